package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	disintegration "github.com/disintegration/imaging"

	"github.com/docsight/mrzscan/internal/detection"
	"github.com/docsight/mrzscan/internal/imaging"
	"github.com/docsight/mrzscan/internal/ocr"
	"github.com/docsight/mrzscan/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("mrzscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	debug := os.Getenv("MRZSCAN_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("mrzscan v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "read":
		code = runRead(os.Args[2:], debug)
	case "evaluate":
		code = runEvaluate(os.Args[2:], debug)
	case "rois":
		code = runROIs(os.Args[2:], debug)
	default:
		// Bare file argument defaults to the read command.
		code = runRead(os.Args[1:], debug)
	}
	os.Exit(code)
}

func usage() {
	fmt.Println("mrzscan - reads the machine-readable zone of ID documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mrzscan read [options] <file>      recognize one image or PDF")
	fmt.Println("  mrzscan evaluate [options] <dir>   recognize every file in a directory")
	fmt.Println("  mrzscan rois [options] <file>      dump detected zone candidates")
	fmt.Println()
	fmt.Println("Options (read):")
	fmt.Println("  --json             print the record as JSON instead of key/value lines")
	fmt.Println("  --save-roi <file>  save the recognized region as PNG")
	fmt.Println()
	fmt.Println("Options (evaluate):")
	fmt.Println("  -j <n>             worker count (default 4)")
	fmt.Println()
	fmt.Println("Options (rois):")
	fmt.Println("  --overlay <file>   save the downscaled image with boxes drawn")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  MRZSCAN_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println()
	fmt.Println("Exit status is 0 when a zone was recognized, 1 when not, 2 on errors.")
}

func runRead(args []string, debug bool) int {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print the record as JSON")
	saveROI := fs.String("save-roi", "", "save the recognized region as PNG")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "read: exactly one input file expected")
		return 2
	}
	path := fs.Arg(0)

	opts := pipeline.DefaultOptions(ocr.NewTesseract())
	res, err := pipeline.ReadFile(context.Background(), path, opts)
	if err != nil {
		log.Printf("read %s: %v", path, err)
		return 2
	}
	if debug {
		log.Printf("read %s: %d candidate boxes, scale %.3f", path, len(res.Boxes), res.ScaleFactor)
	}
	if *saveROI != "" && res.ROI != nil {
		if err := disintegration.Save(res.ROI, *saveROI); err != nil {
			log.Printf("save roi: %v", err)
		}
	}
	if res.Record == nil {
		fmt.Fprintln(os.Stderr, "no machine-readable zone found")
		return 1
	}
	if *asJSON {
		out, err := json.MarshalIndent(res.Record, "", "  ")
		if err != nil {
			log.Printf("encode record: %v", err)
			return 2
		}
		fmt.Println(string(out))
		return 0
	}
	printRecord(res.Record.ToMap())
	return 0
}

func printRecord(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s\t%s\n", k, m[k])
	}
}

func runEvaluate(args []string, debug bool) int {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	workers := fs.Int("j", 4, "worker count")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "evaluate: exactly one directory expected")
		return 2
	}
	dir := fs.Arg(0)

	paths, err := collectInputs(dir)
	if err != nil {
		log.Printf("evaluate %s: %v", dir, err)
		return 2
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no image or PDF files found")
		return 1
	}

	opts := pipeline.DefaultOptions(ocr.NewTesseract())
	results, sum := pipeline.RunBatch(context.Background(), paths, *workers, opts)
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Printf("%s\terror\t%v\n", r.Path, r.Err)
		case r.Result.Record == nil:
			fmt.Printf("%s\tnone\n", r.Path)
		default:
			rec := r.Result.Record
			fmt.Printf("%s\t%s\t%.2f\t%s\n", r.Path, rec.Format, rec.ValidScore, rec.Number)
		}
	}
	fmt.Printf("\nprocessed %d, found %d, perfect %d, errors %d, mean score %.2f\n",
		sum.Processed, sum.Found, sum.Perfect, sum.Errors, sum.MeanScore)
	if sum.Found == 0 {
		return 1
	}
	return 0
}

// collectInputs lists the readable inputs directly inside dir.
func collectInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".pdf":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func runROIs(args []string, debug bool) int {
	fs := flag.NewFlagSet("rois", flag.ExitOnError)
	overlay := fs.String("overlay", "", "save the downscaled image with boxes drawn")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "rois: exactly one input file expected")
		return 2
	}
	path := fs.Arg(0)

	img, err := imaging.Load(path)
	if err != nil {
		log.Printf("rois %s: %v", path, err)
		return 2
	}
	scaled, factor := imaging.Downscale(img, 250)
	mask := imaging.Binarize(scaled)
	boxes := detection.FindCandidateBoxes(mask, detection.DefaultFinderOptions())
	if debug {
		log.Printf("rois %s: mask fill %.4f, scale %.3f", path, imaging.MaskFill(mask), factor)
	}
	for _, b := range boxes {
		fmt.Printf("box\tcx=%.1f\tcy=%.1f\tw=%.1f\th=%.1f\tangle=%.3f\tdensity=%.2f\n",
			b.CX, b.CY, b.Width, b.Height, b.Angle, b.FillDensity)
	}
	for _, z := range detection.GroupZones(boxes, detection.DefaultSelectorOptions()) {
		fmt.Printf("zone\tlines=%d\tscore=%.3f\n", len(z.Boxes), z.Score)
	}
	if *overlay != "" {
		polys := make([][4]image.Point, 0, len(boxes))
		for _, b := range boxes {
			var poly [4]image.Point
			for i, c := range b.Corners() {
				poly[i] = image.Pt(int(c[0]), int(c[1]))
			}
			polys = append(polys, poly)
		}
		if err := disintegration.Save(imaging.RenderBoxes(scaled, polys), *overlay); err != nil {
			log.Printf("save overlay: %v", err)
			return 2
		}
	}
	if len(boxes) == 0 {
		return 1
	}
	return 0
}
