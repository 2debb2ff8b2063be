// Command dewarp is the batch/driver CLI for the page dewarping pipeline
// (SPEC_FULL §11). It mirrors the teacher's cmd/aligntest flag-based CLI
// style: flag.String/flag.Bool, a usage message on stderr, os.Exit(1) on
// failure.
package main

import (
	"flag"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"pagedewarp/internal/binarize"
	"pagedewarp/internal/linedetect"
	"pagedewarp/internal/rectify"
	"pagedewarp/internal/remap"
	"pagedewarp/internal/skew"
	"pagedewarp/internal/split"
	"pagedewarp/internal/tiffmeta"
	"pagedewarp/internal/version"
	"pagedewarp/pkg/geometry"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-f PATH] [-c] [-d DPI] outdir indirs...\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var (
		file       = flag.String("f", "", "process a single file instead of scanning indirs")
		concurrent = flag.Bool("c", false, "process pages with a worker pool")
		forceDPI   = flag.Int("d", 0, "force a DPI tag instead of reading it from the input or inferring it from image height")
		showVer    = flag.Bool("version", false, "print version and exit")
	)
	flag.StringVar(file, "file", "", "same as -f")
	flag.BoolVar(concurrent, "concurrent", false, "same as -c")
	flag.IntVar(forceDPI, "dpi", 0, "same as -d")
	flag.Usage = usage
	flag.Parse()

	if *showVer {
		fmt.Printf("dewarp %s (%s, %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	args := flag.Args()
	if *file == "" && len(args) < 2 {
		usage()
		os.Exit(1)
	}

	var outDir string
	var inputs []string
	if *file != "" {
		if len(args) < 1 {
			usage()
			os.Exit(1)
		}
		outDir = args[0]
		inputs = []string{*file}
	} else {
		outDir = args[0]
		for _, dir := range args[1:] {
			found, err := listImages(dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "dewarp: %v\n", err)
				os.Exit(1)
			}
			inputs = append(inputs, found...)
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "dewarp: %v\n", err)
		os.Exit(1)
	}

	results, err := processAll(inputs, outDir, *forceDPI, *concurrent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dewarp: %v\n", err)
		os.Exit(1)
	}

	pdfPath := filepath.Join(outDir, "output.pdf")
	if err := writePDF(pdfPath, results.images, results.dpis); err != nil {
		fmt.Fprintf(os.Stderr, "dewarp: writing %s: %v\n", pdfPath, err)
		os.Exit(1)
	}
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".tif", ".tiff", ".png", ".jpg", ".jpeg":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

type batchResult struct {
	images []image.Image
	dpis   []float64
}

// processAll runs the per-page pipeline over every input path, optionally
// with a bounded worker pool (SPEC_FULL §11: "-c, --concurrent"), each page
// an independent working set per spec.md §5's concurrency model.
func processAll(inputs []string, outDir string, forceDPI int, concurrent bool) (batchResult, error) {
	n := len(inputs)
	images := make([]image.Image, n)
	dpis := make([]float64, n)
	errs := make([]error, n)

	work := func(i int) {
		img, dpi, err := processOne(inputs[i], outDir, forceDPI)
		images[i] = img
		dpis[i] = dpi
		errs[i] = err
	}

	if concurrent {
		sem := make(chan struct{}, runtime.NumCPU())
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				work(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := 0; i < n; i++ {
			work(i)
		}
	}

	for i, err := range errs {
		if err != nil {
			return batchResult{}, fmt.Errorf("%s: %w", inputs[i], err)
		}
	}
	var out batchResult
	for i := range images {
		if images[i] != nil {
			out.images = append(out.images, images[i])
			out.dpis = append(out.dpis, dpis[i])
		}
	}
	return out, nil
}

// processOne runs binarize -> split -> detect -> skew estimate (diagnostic
// only) -> rectify -> remap (-> optional second pass) for one input image, writing a DPI-tagged TIFF to outDir and returning
// the rectified image for the final PDF assembly pass.
func processOne(path, outDir string, forceDPI int) (image.Image, float64, error) {
	src := gocv.IMRead(path, gocv.IMReadColor)
	if src.Empty() {
		return nil, 0, fmt.Errorf("reading %s: empty or unreadable image", path)
	}
	defer src.Close()

	dpi := float64(forceDPI)
	if dpi <= 0 {
		if d, err := tiffmeta.ExtractDPI(path); err == nil && d > 0 {
			dpi = d
		} else {
			dpi = math.Round(float64(src.Rows())/1100) * 100
			if dpi <= 0 {
				dpi = 300
			}
		}
	}

	binarizer := binarize.DefaultAdaptiveThreshold()
	binary := binarizer.Binarize(src)
	defer binary.Close()

	full := geometry.FullBox(src.Cols(), src.Rows())
	crops := split.SplitSpread(full, columnOccupancy(binary), 0.02)

	detector := linedetect.DefaultStrokeWidthDetector()

	var best image.Image
	for _, crop := range crops {
		region := src.Region(crop.ImageRect())
		regionBinary := binary.Region(crop.ImageRect())

		lines := detector.Detect(regionBinary)
		region.Close()
		regionBinary.Close()
		if len(lines) == 0 {
			continue
		}

		var slopes []float64
		for _, l := range lines {
			box := geometry.FromPoints(l.Points())
			mid := (box.X0 + box.X1) / 2
			slopes = append(slopes, l.Curve.Deriv(mid))
		}
		// EstimateAngle's roll is diagnostic only: RectifyPage's joint
		// optimizer fits theta (including in-plane roll) directly from
		// the same tangent lines, so no separate pre-warp is applied here.
		_ = skew.EstimateAngle(slopes)

		o := geometry.Point2D{X: crop.W() / 2, Y: crop.H() / 2}
		opts := rectify.DefaultOptions().WithTwoPass(true)
		page, err := rectify.RectifyPage(lines, o, int(crop.W()), int(crop.H()), opts)
		if err != nil {
			continue
		}

		remapper := remap.GocvRemapper{}
		dst, err := remapper.Remap(src, page.Mesh)
		if err != nil {
			continue
		}

		if opts.TwoPass {
			if refined, ok := secondPass(detector, dst, opts); ok {
				dst.Close()
				dst = refined
			}
		}

		img, err := dst.ToImage()
		dst.Close()
		if err != nil {
			continue
		}
		best = img
		break
	}

	if best == nil {
		return nil, 0, fmt.Errorf("no usable text lines detected in %s", path)
	}

	outPath := filepath.Join(outDir, filepath.Base(path))
	if err := writeTIFF(outPath, best, dpi); err != nil {
		return nil, 0, err
	}
	return best, dpi, nil
}

// secondPass implements the Options.TwoPass re-detect: it re-binarizes and
// re-detects baselines on the already-rectified output and, if enough
// lines survive, runs a second RectifyPage/Remap seeded from that flatter
// image to sharpen the principal-point estimate. It reports ok=false (and
// leaves the first-pass result untouched) whenever the second detection
// does not clear MinUsableLines or the refit fails.
func secondPass(detector linedetect.StrokeWidthDetector, dst gocv.Mat, opts rectify.Options) (gocv.Mat, bool) {
	binarizer := binarize.DefaultAdaptiveThreshold()
	bin := binarizer.Binarize(dst)
	defer bin.Close()

	lines := detector.Detect(bin)
	if len(lines) < rectify.MinUsableLines {
		return gocv.Mat{}, false
	}

	o := geometry.Point2D{X: float64(dst.Cols()) / 2, Y: float64(dst.Rows()) / 2}
	page, err := rectify.RectifyPage(lines, o, dst.Cols(), dst.Rows(), opts.WithTwoPass(false))
	if err != nil {
		return gocv.Mat{}, false
	}

	remapper := remap.GocvRemapper{}
	refined, err := remapper.Remap(dst, page.Mesh)
	if err != nil {
		return gocv.Mat{}, false
	}
	return refined, true
}

// columnOccupancy reduces a binarized page to a coarse per-column ink
// occupancy bitmap for split.SplitSpread's gap search.
func columnOccupancy(binary gocv.Mat) []bool {
	cols := binary.Cols()
	rows := binary.Rows()
	out := make([]bool, cols)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r += 4 {
			if binary.GetUCharAt(r, c) != 0 {
				out[c] = true
				break
			}
		}
	}
	return out
}
