package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/dicomexplorer"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

var (
	BufferSize = 4096
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

// Prints the metadata tree of one DICOM file or of every .dcm file in a
// folder. Emits to stdout.
func main() {
	defer STDOUT.Flush()

	fmt.Fprintf(os.Stderr, "This dicomdump binary was built at: %s\n", builddate)

	var path string
	var showStats bool
	var buckets int

	flag.StringVar(&path, "file", "", "Path to a single DICOM file, or to a folder with .dcm files. May be a Google Storage URL (gs://).")
	flag.BoolVar(&showStats, "stats", false, "Also print summary statistics and a terminal histogram of the displayed raster's intensities")
	flag.IntVar(&buckets, "buckets", 25, "Bucket count for the -stats histogram")
	flag.Parse()

	fmt.Fprintln(os.Stderr, strings.Join(os.Args, " "))

	if path == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	path = dicomexplorer.ExpandHome(path)

	var sclient *storage.Client
	var err error
	if strings.HasPrefix(path, "gs://") {
		sclient, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	// Single DICOM file
	if fileInfo, err := os.Stat(path); strings.HasPrefix(path, "gs://") || (err == nil && !fileInfo.IsDir()) {
		if err := DumpDicom(path, sclient, showStats, buckets); err != nil {
			log.Fatalln(err)
		}

		return
	}

	// Folder of DICOM files
	if err := IterateOverFolder(path, sclient, showStats, buckets); err != nil {
		log.Fatalln(err)
	}
}
