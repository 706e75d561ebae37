// Command tilecutter slices a single rendered map image into the
// quadrant-path tile pyramid consumed by the server.
package main

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/chai2010/webp"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/brandonteo/BearMaps/internal/logger"
	"github.com/brandonteo/BearMaps/internal/tiles"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Source   string `short:"s" long:"source"    description:"Source image to slice"     required:"true"`
	OutDir   string `short:"d" long:"dir"       description:"Output pyramid directory"  default:"img"`
	MaxDepth int    `short:"m" long:"max-depth" description:"Deepest pyramid level"     default:"7"`
	Format   string `short:"F" long:"format"    description:"Tile encoding"             default:"png" choice:"png" choice:"webp"`
	Force    bool   `short:"f" long:"force"     description:"Force overwrite of existing tiles"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	src, err := loadImage(opts.Source)
	if err != nil {
		log.Fatal().Err(err).Str("source", opts.Source).Msg("Failed to load source image")
	}

	log.Info().
		Int("width", src.Bounds().Dx()).
		Int("height", src.Bounds().Dy()).
		Int("max_depth", opts.MaxDepth).
		Msg("Source image loaded, starting pyramid cut")

	for depth := 0; depth <= opts.MaxDepth; depth++ {
		if err := cutLevel(src, depth, opts); err != nil {
			log.Fatal().Err(err).Int("depth", depth).Msg("Failed to cut pyramid level")
		}
	}

	log.Info().Msg("Pyramid cut finished")
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	log.Debug().Str("format", format).Msg("Image decoded successfully")
	return img, nil
}

// cutLevel rescales the source to this depth's grid and writes every tile
// named by its quadrant path. Rescaling always starts from the original,
// so quality does not degrade level over level.
func cutLevel(src image.Image, depth int, opts Options) error {
	gridSize := 1 << depth
	totalPixels := gridSize * tiles.TileSize

	log.Debug().
		Int("depth", depth).
		Int("grid", gridSize).
		Int("px", totalPixels).
		Msg("Processing pyramid level")

	dst := image.NewRGBA(image.Rect(0, 0, totalPixels, totalPixels))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var wg sync.WaitGroup
	// Semaphore to bound file I/O concurrency
	sem := make(chan struct{}, 20)
	errc := make(chan error, 1)

	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			wg.Add(1)
			sem <- struct{}{}

			go func(col, row int) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := writeTile(dst, depth, col, row, opts); err != nil {
					select {
					case errc <- err:
					default:
					}
				}
			}(col, row)
		}
	}
	wg.Wait()

	select {
	case err := <-errc:
		return err
	default:
		return nil
	}
}

func writeTile(dst *image.RGBA, depth, col, row int, opts Options) error {
	key := tiles.Tile{Path: tiles.PathFor(depth, col, row)}.Key()
	outPath := filepath.Join(opts.OutDir, key+"."+opts.Format)

	if !opts.Force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return nil
		}
	}

	rect := image.Rect(
		col*tiles.TileSize, row*tiles.TileSize,
		(col+1)*tiles.TileSize, (row+1)*tiles.TileSize,
	)
	sub := dst.SubImage(rect)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if opts.Format == "webp" {
		return webp.Encode(f, sub, &webp.Options{Lossless: false, Quality: 85})
	}
	return png.Encode(f, sub)
}
