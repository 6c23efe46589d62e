package document

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

func init() {
	// pdfcpu otherwise writes a config.yml into the user's config dir.
	api.DisableConfigDir()
}

// Image is an encoded image resource embedded in a page.
type Image struct {
	Page   int    // 0-based page index
	Index  int    // position within the page's enumeration order
	Name   string // resource name, e.g. "Im1"
	Format string // file type reported by the extractor: jpg, png, tif, ...
	Data   []byte
}

// PageImages returns the images embedded in page i (0-based), ordered by
// object number. Image resources are enumerated for the whole document on the
// first call and served from memory afterwards.
func (d *Document) PageImages(i int) ([]Image, error) {
	if i < 0 || i >= d.pages {
		return nil, fmt.Errorf("page %d out of range [0,%d)", i, d.pages)
	}
	d.imgOnce.Do(func() {
		d.images, d.imgErr = d.loadImages()
	})
	if d.imgErr != nil {
		return nil, d.imgErr
	}
	return d.images[i], nil
}

type rawImage struct {
	objNr int
	img   Image
}

func (d *Document) loadImages() (pages [][]Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enumerate images: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	rs := io.NewSectionReader(d.f, 0, d.size)
	perPage, err := api.ExtractImagesRaw(rs, nil, conf)
	if err != nil {
		return nil, fmt.Errorf("enumerate images: %w", err)
	}

	raw := make([][]rawImage, d.pages)
	for _, m := range perPage {
		for objNr, mi := range m {
			page := mi.PageNr - 1
			if page < 0 || page >= d.pages {
				d.log.Warn("image outside page range", zap.Int("obj", objNr), zap.Int("page", mi.PageNr))
				continue
			}
			// An unreadable stream stays in place with no bytes so it fails at
			// decode time and is accounted as a per-image failure.
			var data []byte
			if mi.Reader != nil {
				var rerr error
				if data, rerr = io.ReadAll(mi.Reader); rerr != nil {
					d.log.Warn("read image stream", zap.Int("obj", objNr), zap.Int("page", page), zap.Error(rerr))
					data = nil
				}
			}
			raw[page] = append(raw[page], rawImage{
				objNr: objNr,
				img:   Image{Page: page, Name: mi.Name, Format: mi.FileType, Data: data},
			})
		}
	}

	pages = make([][]Image, d.pages)
	for p, imgs := range raw {
		sort.Slice(imgs, func(a, b int) bool { return imgs[a].objNr < imgs[b].objNr })
		out := make([]Image, len(imgs))
		for j, ri := range imgs {
			ri.img.Index = j
			out[j] = ri.img
		}
		pages[p] = out
	}
	d.log.Debug("enumerated images", zap.Int("pages", d.pages))
	return pages, nil
}
