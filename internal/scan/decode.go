package scan

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/coco"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/container"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/dicos"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/imaging"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/logging"
)

// Service decodes and encodes scan containers. It holds no state between
// calls and is safe for concurrent use.
type Service struct {
	log *zap.Logger
}

// New creates a Service. A nil logger discards output.
func New(log *zap.Logger) *Service {
	return &Service{log: logging.OrNop(log)}
}

// annotationJob is one annotation entry to decode, in manifest order.
type annotationJob struct {
	view  string
	entry string
}

// Decode opens a container and decodes every viewpoint into one result.
//
// data may be the archive itself or its base64 text. Pixel entries and
// annotation entries are decoded concurrently, one goroutine each. Every
// goroutine writes only its own slot; the result is assembled after all of
// them finish. The first error is returned and no partial result is
// produced.
func (s *Service) Decode(ctx context.Context, data []byte) (*detection.Result, error) {
	start := time.Now()

	c, err := container.Open(unwrapText(data))
	if err != nil {
		return nil, err
	}
	format, err := c.Manifest.ResolveFormat()
	if err != nil {
		return nil, err
	}

	stacks := c.Manifest.Stacks
	var jobs []annotationJob
	for _, st := range stacks {
		for _, entry := range st.AnnotationLayers {
			jobs = append(jobs, annotationJob{view: st.View, entry: entry})
		}
	}

	pixels := make([]detection.PixelPayload, len(stacks))
	found := make([][]detection.Detection, len(jobs))
	algorithms := make([]*detection.Algorithm, len(jobs))

	var g errgroup.Group
	for i, st := range stacks {
		i, st := i, st
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := readPixels(c, st)
			if err != nil {
				return err
			}
			pixels[i] = p
			s.log.Debug("pixel layer decoded",
				zap.String("view", st.View),
				zap.String("entry", st.PixelLayer),
				zap.Int("width", p.Width),
				zap.Int("height", p.Height))
			return nil
		})
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := c.ReadEntry(job.entry)
			if err != nil {
				return err
			}
			dets, alg, err := decodeAnnotation(format, raw, job.view)
			if err != nil {
				return fmt.Errorf("%s: %w", job.entry, err)
			}
			found[i] = dets
			algorithms[i] = alg
			s.log.Debug("annotation decoded",
				zap.String("view", job.view),
				zap.String("entry", job.entry),
				zap.Int("detections", len(dets)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("decode failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	result := &detection.Result{
		Format:        format,
		DetectionData: []detection.Detection{},
		ImageData:     pixels,
		Algorithms:    detection.DedupAlgorithms(algorithms),
	}
	for _, dets := range found {
		result.DetectionData = append(result.DetectionData, dets...)
	}

	s.log.Info("container decoded",
		zap.String("format", string(format)),
		zap.Int("views", len(pixels)),
		zap.Int("detections", len(result.DetectionData)),
		zap.Int("algorithms", len(result.Algorithms)),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// unwrapText returns the archive bytes of data, decoding base64 text when
// data is not already a zip archive.
func unwrapText(data []byte) []byte {
	if bytes.HasPrefix(data, []byte("PK")) {
		return data
	}
	decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		return data
	}
	return decoded
}

// readPixels reads a viewpoint's pixel entry and its dimensions.
//
// Tag-structured images carry no stable image id and get a fresh one.
// Raster images keep the manifest id, or get a fresh one when it is empty.
func readPixels(c *container.Container, st container.Stack) (detection.PixelPayload, error) {
	p := detection.PixelPayload{
		View:     st.View,
		ImageID:  st.ImageID,
		FileName: st.PixelLayer,
	}

	f, err := container.ClassifyFile(st.PixelLayer)
	if err != nil {
		return p, err
	}
	p.Format = f

	raw, err := c.ReadEntry(st.PixelLayer)
	if err != nil {
		return p, err
	}
	p.Data = raw

	switch f {
	case detection.FormatDICOS:
		img, err := dicos.DecodeImage(raw)
		if err != nil {
			return p, fmt.Errorf("%s: %w", st.PixelLayer, err)
		}
		p.Width, p.Height = img.Width, img.Height
		p.ImageID = detection.NewUUID()
	default:
		info, err := imaging.ReadRasterInfo(raw)
		if err != nil {
			return p, detection.NewError(detection.ErrUnsupportedFileType, st.PixelLayer, err)
		}
		p.Width, p.Height = info.Width, info.Height
		if p.ImageID == "" {
			p.ImageID = detection.NewUUID()
		}
	}
	return p, nil
}

// decodeAnnotation runs the codec of format over one annotation entry.
func decodeAnnotation(format detection.Format, raw []byte, view string) ([]detection.Detection, *detection.Algorithm, error) {
	switch format {
	case detection.FormatDICOS:
		return dicos.DecodeReport(raw, view)
	case detection.FormatCOCO:
		d, err := coco.Decode(raw, view)
		if err != nil {
			return nil, nil, err
		}
		var alg *detection.Algorithm
		if d.Algorithm != "" {
			alg = &detection.Algorithm{Name: d.Algorithm}
		}
		return []detection.Detection{d}, alg, nil
	default:
		return nil, nil, detection.NewError(detection.ErrUnsupportedFileType, string(format), nil)
	}
}
