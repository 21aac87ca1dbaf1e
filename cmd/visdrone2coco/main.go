// Converts a VisDrone object detection dataset to the COCO annotation format.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"github.com/sensorable/visdrone2coco"
	"github.com/sensorable/visdrone2coco/internal/config"
)

var (
	configFilePath string // The optional TOML configuration file.
	envFilePath    string // The optional .env file.

	cfg *config.Config // The effective configuration.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  required:\t\t-source <dir> -dest <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  tfrecord output:\t-tfrecord <file> [-tfrecord-label-map <file>] [-num-shards n]")
		_, _ = fmt.Fprintln(os.Stderr, "  settings can also be read from -config <file.toml> and VISDRONE2COCO_* variables")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Error().Msg(fmt.Sprint(msg...))
		flag.Usage()
		os.Exit(1)
	}

	def := config.Default()

	flag.StringVar(&configFilePath, "config", "", "The TOML configuration file `path`")
	flag.StringVar(&envFilePath, "env", ".env", "The .env file `path` (ignored if it does not exist)")

	// Path arguments.
	source := flag.String("source", "",
		"The `path` to the VisDrone dataset with images and annotations directories")
	dest := flag.String("dest", "", "The `path` to the COCO output directory")
	imageExt := flag.String("image-ext", def.ImageExt, "The image file `extension` in the dataset")

	// Conversion arguments.
	lenient := flag.Bool("lenient", false,
		"Skip malformed annotation lines with a warning instead of failing")
	keepIgnored := flag.Bool("keep-ignored", false,
		"Treat \"ignored regions\" (class 0) lines as records, which makes them fail validation")
	indent := flag.Bool("indent", false, "Pretty print instances.json")
	logLevel := flag.String("log-level", def.Logging.Level,
		"The log `level` {trace, debug, info, warn, error}")

	// TFRecord arguments.
	tfRecord := flag.String("tfrecord", "", "The TFRecord output file `path` (disabled if empty)")
	tfLabelMap := flag.String("tfrecord-label-map", "", "The TFRecord label map file `path`")
	numShards := flag.Int("num-shards", def.TFRecord.NumShards,
		"The number of TFRecord shard files to create")

	// Image processing arguments.
	resizeLonger := flag.Int("resize-longer", 0,
		"The target `length` for the longer side of the image (zero to keep aspect ratio)")
	resizeShorter := flag.Int("resize-shorter", 0,
		"The target `length` for the shorter side of the image (zero to keep aspect ratio)")
	downsample := flag.String("downsample-filter", def.Resize.DownsamplingFilter,
		"The filter to use when downsampling an image {nearest, box, linear, gaussian, lanczos}")
	upsample := flag.String("upsample-filter", def.Resize.UpsamplingFilter,
		"The filter to use when upsampling an image {nearest, box, linear, gaussian, lanczos}")
	jpegQuality := flag.Int("jpeg-quality", def.Resize.JPEGQuality,
		"The quality to use when encoding resized JPEGs [1, 100]")

	flag.Parse()

	var err error
	if cfg, err = config.Load(configFilePath, envFilePath); err != nil {
		printUsageAndExit(err)
	}

	// Explicitly set flags take precedence over the configuration file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *source
		case "dest":
			cfg.Destination = *dest
		case "image-ext":
			cfg.ImageExt = *imageExt
		case "lenient":
			cfg.Lenient = *lenient
		case "keep-ignored":
			cfg.KeepIgnored = *keepIgnored
		case "indent":
			cfg.Indent = *indent
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "tfrecord":
			cfg.TFRecord.Path = *tfRecord
		case "tfrecord-label-map":
			cfg.TFRecord.LabelMapPath = *tfLabelMap
		case "num-shards":
			cfg.TFRecord.NumShards = *numShards
		case "resize-longer":
			cfg.Resize.Longer = *resizeLonger
		case "resize-shorter":
			cfg.Resize.Shorter = *resizeShorter
		case "downsample-filter":
			cfg.Resize.DownsamplingFilter = *downsample
		case "upsample-filter":
			cfg.Resize.UpsamplingFilter = *upsample
		case "jpeg-quality":
			cfg.Resize.JPEGQuality = *jpegQuality
		}
	})

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		printUsageAndExit(err)
	}

	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(cfg.Logging.Level),
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{Writer: os.Stderr, ColorOutput: true},
	}
}

func main() {
	exporter := visdrone2coco.Exporter{
		Source:      cfg.Source,
		Destination: cfg.Destination,
		Options: visdrone2coco.ExportOptions{
			ImageExt: cfg.ImageExt,
			Indent:   cfg.Indent,
			Assembler: visdrone2coco.AssemblerOptions{
				Lenient:     cfg.Lenient,
				KeepIgnored: cfg.KeepIgnored,
			},
			Resize: visdrone2coco.ResizeOptions{
				LongerSide:         cfg.Resize.Longer,
				ShorterSide:        cfg.Resize.Shorter,
				DownsamplingFilter: cfg.Resize.DownsamplingFilter,
				UpsamplingFilter:   cfg.Resize.UpsamplingFilter,
				JPEGQuality:        cfg.Resize.JPEGQuality,
			},
		},
	}

	stats, err := exporter.Export()
	if err != nil {
		log.Fatal().Err(err).Str("code", string(visdrone2coco.CodeOf(err))).Msg("Conversion failed")
	}

	if cfg.TFRecord.Path != "" {
		err = visdrone2coco.WriteTFRecord(exporter.Document(),
			filepath.Join(cfg.Destination, visdrone2coco.ImagesDir),
			visdrone2coco.TFRecordOptions{
				RecordPath:   cfg.TFRecord.Path,
				LabelMapPath: cfg.TFRecord.LabelMapPath,
				NumShards:    cfg.TFRecord.NumShards,
			})
		if err != nil {
			log.Fatal().Err(err).Msg("TFRecord export failed")
		}
	}

	log.Info().Int("images", stats.Images).Int("annotations", stats.Annotations).
		Msg("Total number of converted files")
}
