package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/gif"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/suyashkumar/dicom"

	"github.com/carbocation/dicomexplorer"
	"github.com/carbocation/dicomexplorer/dicomfile"
	"github.com/carbocation/dicomexplorer/render"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

// Safe for concurrent use by multiple goroutines so we'll make this a global
var client *storage.Client

func main() {

	fmt.Fprintf(os.Stderr, "This dicomgif binary was built at: %s\n", builddate)

	var inputPath, outputPath string
	var delay int
	var labelFrames bool
	flag.StringVar(&inputPath, "file", "", "Path to the multi-frame DICOM file. May be a Google Storage URL (gs://).")
	flag.StringVar(&outputPath, "out", "", "Path for the animated gif. Defaults to the input filename plus .gif")
	flag.IntVar(&delay, "delay", 2, "Hundredths of a second between each frame of the gif.")
	flag.BoolVar(&labelFrames, "labelframes", false, "Pass this if you want to print the frame number at the top of each frame of the animated gif.")
	flag.Parse()

	fmt.Fprintln(os.Stderr, strings.Join(os.Args, " "))

	if inputPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	inputPath = dicomexplorer.ExpandHome(inputPath)

	if outputPath == "" {
		outputPath = inputPath + ".gif"
	}
	outputPath = dicomexplorer.ExpandHome(outputPath)

	if strings.HasPrefix(inputPath, "gs://") {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	if err := run(inputPath, outputPath, delay, labelFrames); err != nil {
		log.Fatalln(err)
	}
}

func run(inputPath, outputPath string, delay int, labelFrames bool) error {
	ds, err := dicomfile.Open(inputPath, client)
	if err != nil {
		return err
	}

	var out *gif.GIF
	if labelFrames {
		out, err = labeledGIF(ds, delay)
	} else {
		out, err = render.DatasetGIF(ds, delay)
	}
	if err != nil {
		return err
	}

	log.Printf("Assembled %d frames into %s\n", len(out.Image), outputPath)

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	if err := gif.EncodeAll(f, out); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// labeledGIF renders each frame through the display pipeline and stamps
// its frame number before palettization.
func labeledGIF(ds dicom.Dataset, delay int) (*gif.GIF, error) {
	count := render.FrameCount(ds)

	frames := make([]image.Image, 0, count)
	for i := 0; i < count; i++ {
		props, err := render.PropertiesForFrame(ds, i)
		if err != nil {
			return nil, err
		}

		img, err := render.NormalizeForDisplay(props)
		if err != nil {
			return nil, err
		}

		frames = append(frames, render.Annotate(img, fmt.Sprintf("frame %d", i)))
	}

	return render.FramesGIF(frames, delay)
}
