package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/dicomexplorer"
	"github.com/carbocation/dicomexplorer/dicomfile"
	"github.com/carbocation/dicomexplorer/render"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

func main() {

	fmt.Fprintf(os.Stderr, "This dicom2png binary was built at: %s\n", builddate)

	var inputPath, outputPath string
	var frameIndex int
	flag.StringVar(&inputPath, "file", "", "Path to the local DICOM file. If this points to a folder, all .dcm files in the folder will be converted. May be a Google Storage URL (gs://).")
	flag.StringVar(&outputPath, "out", "", "Path to the local folder where the rendered PNGs will go")
	flag.IntVar(&frameIndex, "frame", 0, "For multi-frame files, the frame to render")
	flag.Parse()

	fmt.Fprintln(os.Stderr, strings.Join(os.Args, " "))

	if inputPath == "" || outputPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	inputPath = dicomexplorer.ExpandHome(inputPath)
	outputPath = dicomexplorer.ExpandHome(outputPath)

	var sclient *storage.Client
	var err error
	if strings.HasPrefix(inputPath, "gs://") {
		sclient, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	fileInfo, statErr := os.Stat(inputPath)
	if statErr == nil && fileInfo.IsDir() {
		err = runDir(inputPath, outputPath, sclient, frameIndex)
	} else {
		err = run(inputPath, outputPath, sclient, frameIndex)
	}

	if err != nil {
		log.Fatalln(err)
	}
}

func run(inputPath, outputPath string, sclient *storage.Client, frameIndex int) error {

	ds, err := dicomfile.Open(inputPath, sclient)
	if err != nil {
		return err
	}

	props, err := render.PropertiesForFrame(ds, frameIndex)
	if err != nil {
		return err
	}

	img, err := render.NormalizeForDisplay(props)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(outputPath, filepath.Base(inputPath)+".png"))
	if err != nil {
		return err
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func runDir(inputPath, outputPath string, sclient *storage.Client, frameIndex int) error {
	dir, err := os.ReadDir(inputPath)
	if err != nil {
		return err
	}

	concurrency := runtime.NumCPU()
	sem := make(chan bool, concurrency)

	for _, file := range dir {
		if file.IsDir() || !dicomfile.IsDicomFilename(file.Name()) {
			continue
		}

		sem <- true
		go func(filename string) {
			if err := run(filename, outputPath, sclient, frameIndex); err != nil {
				log.Println(err.Error(), "Skipping file...")
			}
			<-sem
		}(filepath.Join(inputPath, file.Name()))
	}

	for i := 0; i < cap(sem); i++ {
		sem <- true
	}

	return nil
}
