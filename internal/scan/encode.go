package scan

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/coco"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/container"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/dicos"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/imaging"
)

// EncodeRequest is the input of Encode.
type EncodeRequest struct {
	// Format is the annotation format to write. Pixel payloads are
	// converted to the matching pixel encoding.
	Format detection.Format

	// Detections are written one annotation entry each, grouped under
	// their view.
	Detections []detection.Detection

	// Images supplies one pixel payload per viewpoint, in output order.
	Images []detection.PixelPayload

	// Algorithms supplies detector metadata by algorithm name. Optional.
	Algorithms map[string]detection.Algorithm

	// Base64 returns the archive as base64 text.
	Base64 bool
}

// encodedView is one converted viewpoint, ready to be written.
type encodedView struct {
	view    string
	imageID string
	entry   string
	data    []byte
	width   int
	height  int
}

// Encode writes detections and pixel payloads into a new container.
//
// Pixel payloads are converted concurrently, one goroutine per viewpoint.
// Every detection is validated before anything is written; a detection
// whose view has no pixel payload fails with ErrMissingPixelLayer.
func (s *Service) Encode(ctx context.Context, req EncodeRequest) ([]byte, error) {
	start := time.Now()

	if req.Format != detection.FormatDICOS && req.Format != detection.FormatCOCO {
		return nil, detection.NewError(detection.ErrUnsupportedFileType, string(req.Format), nil)
	}

	viewIndex := make(map[string]int, len(req.Images))
	for i, p := range req.Images {
		if !validView(p.View) {
			return nil, detection.NewError(detection.ErrMalformedManifest, "view",
				fmt.Errorf("view %q cannot name an entry", p.View))
		}
		if _, dup := viewIndex[p.View]; dup {
			return nil, detection.NewError(detection.ErrMalformedManifest, "view",
				fmt.Errorf("duplicate view %q", p.View))
		}
		viewIndex[p.View] = i
	}
	for i := range req.Detections {
		d := &req.Detections[i]
		if _, ok := viewIndex[d.View]; !ok {
			return nil, detection.NewError(detection.ErrMissingPixelLayer, d.View, nil)
		}
		if err := d.Validate(); err != nil {
			return nil, detection.NewError(detection.ErrInvalidAnnotationPayload,
				fmt.Sprintf("detection %d", i), err)
		}
	}

	views := make([]encodedView, len(req.Images))
	var g errgroup.Group
	for i, p := range req.Images {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := convertPixels(p, i, req.Format)
			if err != nil {
				return err
			}
			views[i] = v
			s.log.Debug("pixel layer encoded",
				zap.String("view", p.View),
				zap.String("entry", v.entry),
				zap.Int("bytes", len(v.data)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make(map[string][]byte, len(views)+len(req.Detections))
	manifest := &container.Manifest{Format: req.Format}
	stacks := make([]container.Stack, len(views))
	for i, v := range views {
		entries[v.entry] = v.data
		stacks[i] = container.Stack{View: v.view, ImageID: v.imageID, PixelLayer: v.entry}
	}

	ext := container.AnnotationExtension(req.Format)
	perView := make([]int, len(views))
	for i, d := range req.Detections {
		vi := viewIndex[d.View]
		v := views[vi]
		name := fmt.Sprintf("data/%s_%d%s", v.view, perView[vi]+1, ext)
		perView[vi]++

		raw, err := s.encodeAnnotation(req, d, i, vi, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		entries[name] = raw
		stacks[vi].AnnotationLayers = append(stacks[vi].AnnotationLayers, name)
	}
	manifest.Stacks = stacks

	doc, err := manifest.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	out, err := container.Write(doc, entries)
	if err != nil {
		return nil, err
	}

	s.log.Info("container encoded",
		zap.String("format", string(req.Format)),
		zap.Int("views", len(views)),
		zap.Int("detections", len(req.Detections)),
		zap.Int("bytes", len(out)),
		zap.Duration("duration", time.Since(start)))

	if req.Base64 {
		return []byte(base64.StdEncoding.EncodeToString(out)), nil
	}
	return out, nil
}

func (s *Service) encodeAnnotation(req EncodeRequest, d detection.Detection, index, viewIndex int, v encodedView) ([]byte, error) {
	if req.Format == detection.FormatCOCO {
		return coco.Encode(d, coco.EncodeOptions{
			ID:       index + 1,
			ImageID:  v.imageID,
			FileName: v.entry,
			Width:    v.width,
			Height:   v.height,
		})
	}

	opts := dicos.ReportOptions{
		Index:            index,
		ImageInstanceUID: dicos.ImageInstanceUID(viewIndex),
	}
	if alg, ok := req.Algorithms[d.Algorithm]; ok {
		opts.Algorithm = &alg
	}
	return dicos.EncodeReport(d, opts)
}

// validView reports whether a view name can be used as a single path
// element of an entry name.
func validView(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// convertPixels re-encodes a pixel payload for the target format. Raster
// payloads bound for COCO are copied unchanged. DICOS images are always
// rewritten so their SOP instance UID is the one the reports reference.
func convertPixels(p detection.PixelPayload, index int, target detection.Format) (encodedView, error) {
	v := encodedView{
		view:    p.View,
		imageID: strconv.Itoa(index + 1),
		entry:   "data/" + p.View + "_pixel" + container.PixelExtension(target),
		data:    p.Data,
		width:   p.Width,
		height:  p.Height,
	}
	if len(p.Data) == 0 {
		return v, detection.NewError(detection.ErrMissingPixelLayer, p.View, nil)
	}

	switch {
	case target == detection.FormatCOCO && p.Format == detection.FormatDICOS:
		img, err := dicos.DecodeImage(p.Data)
		if err != nil {
			return v, fmt.Errorf("%s: %w", p.FileName, err)
		}
		png, err := imaging.EncodePNG(imaging.Gray16ToRGBA(img.Pixels))
		if err != nil {
			return v, fmt.Errorf("%s: %w", p.FileName, err)
		}
		v.data, v.width, v.height = png, img.Width, img.Height

	case target == detection.FormatDICOS && p.Format == detection.FormatDICOS:
		img, err := dicos.DecodeImage(p.Data)
		if err != nil {
			return v, fmt.Errorf("%s: %w", p.FileName, err)
		}
		dcs, err := dicos.EncodeImage(img.Pixels, dicos.ImageOptions{ViewIndex: index, View: p.View})
		if err != nil {
			return v, fmt.Errorf("%s: %w", p.FileName, err)
		}
		v.data, v.width, v.height = dcs, img.Width, img.Height

	case target == detection.FormatDICOS:
		img, err := imaging.DecodeRaster(p.Data)
		if err != nil {
			return v, detection.NewError(detection.ErrUnsupportedFileType, p.FileName, err)
		}
		gray := imaging.RGBAToGray16(img)
		dcs, err := dicos.EncodeImage(gray, dicos.ImageOptions{ViewIndex: index, View: p.View})
		if err != nil {
			return v, fmt.Errorf("%s: %w", p.FileName, err)
		}
		b := gray.Bounds()
		v.data, v.width, v.height = dcs, b.Dx(), b.Dy()
	}
	return v, nil
}

// Convert decodes a container and re-encodes it in format, returning the
// new container and the format written. FormatUnknown keeps the source
// format.
func (s *Service) Convert(ctx context.Context, data []byte, format detection.Format, asBase64 bool) ([]byte, detection.Format, error) {
	res, err := s.Decode(ctx, data)
	if err != nil {
		return nil, detection.FormatUnknown, err
	}
	if format == detection.FormatUnknown {
		format = res.Format
	}
	out, err := s.Encode(ctx, EncodeRequest{
		Format:     format,
		Detections: res.DetectionData,
		Images:     res.ImageData,
		Algorithms: res.Algorithms,
		Base64:     asBase64,
	})
	if err != nil {
		return nil, detection.FormatUnknown, err
	}
	return out, format, nil
}
