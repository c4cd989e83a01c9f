package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"

	"github.com/carbocation/dicomexplorer/dicomfile"
	"github.com/carbocation/dicomexplorer/render"
	"github.com/carbocation/dicomexplorer/tagtree"
)

func IterateOverFolder(path string, sclient *storage.Client, showStats bool, buckets int) error {

	files, err := os.ReadDir(path)
	if err != nil {
		return pfx.Err(err)
	}

	for _, file := range files {

		if file.IsDir() || !dicomfile.IsDicomFilename(file.Name()) {
			continue
		}

		if err := DumpDicom(filepath.Join(path, file.Name()), sclient, showStats, buckets); err != nil {
			log.Println("Ignoring error and continuing:", err.Error())
			continue
		}
	}

	return nil
}

// DumpDicom prints every metadata row of one file, with sequence items
// indented beneath their sequence.
func DumpDicom(path string, sclient *storage.Client, showStats bool, buckets int) error {
	ds, err := dicomfile.Open(path, sclient)
	if err != nil {
		return pfx.Err(err)
	}

	fmt.Fprintln(STDOUT, strings.Repeat("=", 30))
	fmt.Fprintln(STDOUT, path)
	fmt.Fprintln(STDOUT, strings.Repeat("=", 30))

	printNodes(STDOUT, tagtree.Build(ds), 0)

	if showStats {
		if err := printStats(ds, buckets); err != nil {
			return pfx.Err(err)
		}
	}

	return nil
}

func printNodes(w io.Writer, nodes []*tagtree.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		name := node.Name
		if name == "" {
			name = "____"
		}

		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", indent, node.TagString(), name, node.VR, node.Value)
		printNodes(w, node.Children, depth+1)
	}
}

// printStats renders the file the way the viewer would display it and
// summarizes the resulting 8-bit intensities.
func printStats(ds dicom.Dataset, buckets int) error {
	props, err := render.PropertiesFromDataset(ds)
	if err != nil {
		return err
	}

	img, err := render.NormalizeForDisplay(props)
	if err != nil {
		return err
	}

	grid := render.GridFromGray(img)

	pixelStats, err := render.ComputeStats(grid)
	if err != nil {
		return err
	}

	fmt.Fprintf(STDOUT, "n=%d min=%.5g max=%.5g mean=%.5g median=%.5g stddev=%.5g\n",
		pixelStats.Samples, pixelStats.Min, pixelStats.Max, pixelStats.Mean, pixelStats.Median, pixelStats.StdDev)

	if w, err := render.AutoWindow(props.Grid); err == nil && w != nil {
		fmt.Fprintf(STDOUT, "suggested window center=%.5g width=%.5g\n", w.Center, w.Width)
	}

	// The histogram prints directly rather than through the buffered
	// writer, so flush first to keep the output ordered.
	STDOUT.Flush()

	hist := histogram.Hist(buckets, grid.Data)

	return histogram.Fprint(os.Stdout, hist, histogram.Linear(40))
}
