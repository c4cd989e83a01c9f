package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/dicomexplorer"
	"github.com/carbocation/dicomexplorer/anonymize"
	"github.com/carbocation/dicomexplorer/dicomfile"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

type scrubFlags struct {
	mode              anonymize.Mode
	removePrivate     bool
	removeUIDs        bool
	resetDates        bool
	removeDates       bool
	removeInstitution bool
	removeDevice      bool
}

func main() {

	fmt.Fprintf(os.Stderr, "This dicomanon binary was built at: %s\n", builddate)

	var inputPath, outputPath, modeName string
	var flags scrubFlags
	flag.StringVar(&inputPath, "file", "", "Path to the local DICOM file. If this points to a folder, all .dcm files in the folder will be anonymized. May be a Google Storage URL (gs://).")
	flag.StringVar(&outputPath, "out", "", "Path to the local folder where the anonymized copies will go")
	flag.StringVar(&modeName, "mode", "basic", "Anonymization mode: basic blanks the sensitive tags, pseudo replaces them with plausible random values.")
	flag.BoolVar(&flags.removePrivate, "remove-private", false, "Also remove every private (odd-group) tag")
	flag.BoolVar(&flags.removeUIDs, "remove-uids", false, "Also blank every tag whose name contains UID, outside the file meta group")
	flag.BoolVar(&flags.resetDates, "reset-dates", false, "Also blank the study/series/acquisition/content date and time tags")
	flag.BoolVar(&flags.removeDates, "remove-dates", false, "Also blank every date- or time-valued tag, outside the file meta group")
	flag.BoolVar(&flags.removeInstitution, "remove-institution", false, "Also blank the institution tags")
	flag.BoolVar(&flags.removeDevice, "remove-device", false, "Also blank the device and manufacturer tags")
	flag.Parse()

	fmt.Fprintln(os.Stderr, strings.Join(os.Args, " "))

	if inputPath == "" || outputPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	inputPath = dicomexplorer.ExpandHome(inputPath)
	outputPath = dicomexplorer.ExpandHome(outputPath)

	mode, err := anonymize.ParseMode(modeName)
	if err != nil {
		log.Fatalln(err)
	}
	flags.mode = mode

	var sclient *storage.Client
	if strings.HasPrefix(inputPath, "gs://") {
		sclient, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	fileInfo, statErr := os.Stat(inputPath)
	if statErr == nil && fileInfo.IsDir() {
		err = runDir(inputPath, outputPath, sclient, flags)
	} else {
		err = run(inputPath, outputPath, sclient, flags)
	}

	if err != nil {
		log.Fatalln(err)
	}
}

func run(inputPath, outputPath string, sclient *storage.Client, flags scrubFlags) error {

	ds, err := dicomfile.Open(inputPath, sclient)
	if err != nil {
		return err
	}

	scrubbed, err := anonymize.New(nil).Anonymize(&ds, flags.mode)
	if err != nil {
		return err
	}

	if flags.removePrivate {
		n, err := anonymize.RemovePrivateTags(&ds)
		if err != nil {
			return err
		}
		scrubbed += n
	}
	if flags.removeUIDs {
		n, err := anonymize.RemoveUIDs(&ds)
		if err != nil {
			return err
		}
		scrubbed += n
	}
	if flags.resetDates {
		n, err := anonymize.ResetStudyDateTime(&ds)
		if err != nil {
			return err
		}
		scrubbed += n
	}
	if flags.removeDates {
		n, err := anonymize.RemoveDates(&ds)
		if err != nil {
			return err
		}
		scrubbed += n
	}
	if flags.removeInstitution {
		n, err := anonymize.RemoveInstitutionInfo(&ds)
		if err != nil {
			return err
		}
		scrubbed += n
	}
	if flags.removeDevice {
		n, err := anonymize.RemoveDeviceInfo(&ds)
		if err != nil {
			return err
		}
		scrubbed += n
	}

	outName, err := dicomfile.Save(ds, filepath.Join(outputPath, filepath.Base(inputPath)))
	if err != nil {
		return err
	}

	log.Printf("%s: scrubbed %d tags, wrote %s\n", inputPath, scrubbed, outName)

	return nil
}

func runDir(inputPath, outputPath string, sclient *storage.Client, flags scrubFlags) error {
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
			if err := run(filename, outputPath, sclient, flags); err != nil {
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
