package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"runtime"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	_ "github.com/carbocation/dicomexplorer/compileinfoprint"

	"github.com/carbocation/dicomexplorer"
	"github.com/carbocation/dicomexplorer/explorer"
)

var global *Global

func init() {
	// Prevent seed re-use
	rand.Seed(int64(time.Now().Nanosecond()))
}

func main() {
	errors := make(chan error, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig,
		os.Interrupt,
		os.Kill,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	var folder, configPath, listen string
	var thumbnailSize, histogramBuckets int
	var zoomFactor float64
	flag.StringVar(&folder, "folder", "", "(Optional) Folder of DICOM files to load at startup. May be a Google Storage URL (gs://). Files can also be loaded from the web UI.")
	flag.StringVar(&configPath, "config", "", "(Optional) YAML config file. Flags override its values.")
	flag.StringVar(&listen, "listen", "", "(Optional) host:port for the HTTP server. Overrides the config file.")
	flag.IntVar(&thumbnailSize, "thumbnail-size", 0, "(Optional) Bounding box in pixels for the study strip thumbnails. Overrides the config file.")
	flag.Float64Var(&zoomFactor, "zoom-factor", 0, "(Optional) Scale applied per zoom gesture. Overrides the config file.")
	flag.IntVar(&histogramBuckets, "buckets", 0, "(Optional) Bin count for the intensity histogram. Overrides the config file.")
	flag.Parse()

	folder = dicomexplorer.ExpandHome(folder)
	configPath = dicomexplorer.ExpandHome(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}
	if thumbnailSize > 0 {
		cfg.ThumbnailSize = thumbnailSize
	}
	if zoomFactor > 0 {
		cfg.ZoomFactor = zoomFactor
	}
	if histogramBuckets > 0 {
		cfg.HistogramBuckets = histogramBuckets
	}
	cfg.normalize()

	var sclient *storage.Client
	if strings.HasPrefix(folder, "gs://") {
		sclient, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	global = &Global{
		Site:          "DICOM Explorer",
		Company:       "Broad Institute",
		Email:         "jamesp@broadinstitute.org",
		SnailMail:     "415 Main Street, Cambridge MA",
		log:           log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime),
		storageClient: sclient,
		explorer:      explorer.New(sclient),

		Folder: folder,
		Config: cfg,
	}

	if folder != "" {
		loaded, failures, err := global.explorer.LoadDir(folder)
		if err != nil {
			log.Fatalln(err)
		}
		for path, loadErr := range failures {
			global.log.Println(path, ":", loadErr.Error(), "Skipping file...")
		}
		global.log.Printf("Loaded %d files from %s (%d skipped)\n", loaded, folder, len(failures))
	}

	global.log.Println("Launching", global.Site)

	whoami, err := user.Current()
	if err != nil {
		log.Fatalln(err)
	}
	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalln(err)
	}

	if _, port, err := net.SplitHostPort(cfg.ListenAddress); err == nil {
		global.log.Println("Locally, you should now run:")
		global.log.Printf("gcloud compute ssh %s@%s -- -NnT -L %s:localhost:%s\n", whoami.Username, hostname, port, port)
	}

	go func() {
		global.log.Println("Starting HTTP server on", cfg.ListenAddress)

		routing, err := router(global)
		if err != nil {
			errors <- err
			global.log.Println(err)
			sig <- syscall.SIGTERM
			return
		}

		if err := http.ListenAndServe(cfg.ListenAddress, routing); err != nil {
			errors <- err
			global.log.Println(err)
			sig <- syscall.SIGTERM
			return
		}
	}()

Outer:
	for {
		select {
		case sigl := <-sig:

			if sigl == syscall.SIGUSR1 {
				SigStatus()
				continue
			}

			// By default, exit
			global.log.Printf("\nExit: %s\n", sigl.String())

			break Outer

		case err := <-errors:
			if err == nil {
				global.log.Println("Finished")
				break Outer
			}

			// Return a status code indicating failure
			global.log.Println("Exiting due to error", err)
			os.Exit(1)
		}
	}
}

func SigStatus() {
	global.log.Println("There are", runtime.NumGoroutine(), "goroutines running")
}
