package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/dicomexplorer"
	"github.com/carbocation/dicomexplorer/dicomfile"
	"github.com/carbocation/dicomexplorer/tagtree"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

func main() {

	fmt.Fprintf(os.Stderr, "This dicomedit binary was built at: %s\n", builddate)

	var inputPath, outputPath, tagName, newValue string
	var deleteTag bool
	flag.StringVar(&inputPath, "file", "", "Path to the local DICOM file. May be a Google Storage URL (gs://).")
	flag.StringVar(&outputPath, "out", "", "Path where the edited file will be written. Defaults to overwriting the input file.")
	flag.StringVar(&tagName, "tag", "", "Tag to edit, like (0010,0010)")
	flag.StringVar(&newValue, "value", "", "New value for the tag")
	flag.BoolVar(&deleteTag, "delete", false, "Remove the tag instead of setting it")
	flag.Parse()

	fmt.Fprintln(os.Stderr, strings.Join(os.Args, " "))

	if inputPath == "" || tagName == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if deleteTag == (newValue != "") {
		log.Fatalln("Provide either -value or -delete, not both")
	}

	inputPath = dicomexplorer.ExpandHome(inputPath)
	outputPath = dicomexplorer.ExpandHome(outputPath)

	if outputPath == "" {
		if strings.HasPrefix(inputPath, "gs://") {
			log.Fatalln("Provide -out when editing a file that lives on Google Storage")
		}
		outputPath = inputPath
	}

	if err := run(inputPath, outputPath, tagName, newValue, deleteTag); err != nil {
		log.Fatalln(err)
	}
}

func run(inputPath, outputPath, tagName, newValue string, deleteTag bool) error {

	t, err := dicomfile.ParseTag(tagName)
	if err != nil {
		return err
	}

	var sclient *storage.Client
	if strings.HasPrefix(inputPath, "gs://") {
		sclient, err = storage.NewClient(context.Background())
		if err != nil {
			return err
		}
	}

	ds, err := dicomfile.Open(inputPath, sclient)
	if err != nil {
		return err
	}

	if deleteTag {
		removed, err := tagtree.Delete(&ds, t)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("Tag %s is not present in %s", dicomfile.TagString(t), inputPath)
		}
	} else if err := tagtree.SetValue(&ds, t, newValue); err != nil {
		return fmt.Errorf("Setting %s: %w", dicomfile.TagString(t), err)
	}

	outName, err := dicomfile.Save(ds, outputPath)
	if err != nil {
		return err
	}

	if deleteTag {
		log.Printf("Removed %s, wrote %s\n", dicomfile.TagString(t), outName)
	} else {
		log.Printf("Set %s to %q, wrote %s\n", dicomfile.TagString(t), newValue, outName)
	}

	return nil
}
