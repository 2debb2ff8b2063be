package main

import (
	"image"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	pdfimage "seehuhn.de/go/pdf/graphics/image"
)

// writePDF assembles a batch's rectified pages into a single multi-page PDF,
// replacing the original batch.py's external `tiff2pdf` shell-out with a
// native Go writer (SPEC_FULL §10/§11). Each page image is embedded at one
// point per pixel (72 DPI nominal) and scaled to the page's DPI so physical
// page size is preserved across inputs of different resolutions.
func writePDF(outPath string, pages []image.Image, dpis []float64) error {
	if len(pages) == 0 {
		return nil
	}

	w, err := document.CreateMultiPage(outPath, nil, pdf.V1_7, nil)
	if err != nil {
		return err
	}
	defer w.Close()

	for i, img := range pages {
		dpi := dpis[i]
		if dpi <= 0 {
			dpi = 300
		}
		b := img.Bounds()
		ptW := float64(b.Dx()) * 72 / dpi
		ptH := float64(b.Dy()) * 72 / dpi

		page := w.NextPage(&pdf.Rectangle{URx: ptW, URy: ptH})

		embedded, err := pdfimage.Embed(page.RM, img, nil)
		if err != nil {
			return err
		}
		page.Transform(scaleMatrix(ptW, ptH))
		page.DrawXObject(embedded)

		if err := page.Close(); err != nil {
			return err
		}
	}

	return nil
}

// scaleMatrix maps the embedded image's unit square onto a ptW x ptH page,
// flipping Y since PDF user space has its origin at the bottom-left while
// image.Image rows run top-down (mirrors the genpdf test harness's Y-flip
// convention).
func scaleMatrix(ptW, ptH float64) matrix.Matrix {
	return matrix.Matrix{ptW, 0, 0, -ptH, 0, ptH}
}
