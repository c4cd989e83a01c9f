package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/suyashkumar/dicom"

	"github.com/carbocation/dicomexplorer"
	"github.com/carbocation/dicomexplorer/explorer"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

func main() {

	fmt.Fprintf(os.Stderr, "This dicommanifest binary was built at: %s\n", builddate)

	var folder, outputPath string
	flag.StringVar(&folder, "folder", "", "Folder of DICOM files to summarize. May be a Google Storage URL (gs://).")
	flag.StringVar(&outputPath, "out", "", "Path to the tab-delimited manifest. Defaults to stdout.")
	flag.Parse()

	fmt.Fprintln(os.Stderr, strings.Join(os.Args, " "))

	if folder == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	folder = dicomexplorer.ExpandHome(folder)
	outputPath = dicomexplorer.ExpandHome(outputPath)

	if err := run(folder, outputPath); err != nil {
		log.Fatalln(err)
	}
}

func run(folder, outputPath string) error {

	var sclient *storage.Client
	var err error
	if strings.HasPrefix(folder, "gs://") {
		sclient, err = storage.NewClient(context.Background())
		if err != nil {
			return err
		}
	}

	// The manifest only needs header fields, so don't keep pixel data
	// for every file in the folder in memory at once.
	exp := explorer.New(sclient, dicom.SkipPixelData())

	loaded, failures, err := exp.LoadDir(folder)
	if err != nil {
		return err
	}
	for path, loadErr := range failures {
		log.Println(path, ":", loadErr.Error(), "Skipping file...")
	}
	log.Printf("Loaded %d files from %s (%d skipped)\n", loaded, folder, len(failures))

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return exp.ExportManifest(out)
}
