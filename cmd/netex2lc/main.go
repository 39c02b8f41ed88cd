package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"

	"github.com/theoremus-urban-solutions/netex-to-lc/config"
	"github.com/theoremus-urban-solutions/netex-to-lc/diag"
	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
	"github.com/theoremus-urban-solutions/netex-to-lc/netex"
	"github.com/theoremus-urban-solutions/netex-to-lc/rdf"
	"github.com/theoremus-urban-solutions/netex-to-lc/siri"
	"github.com/theoremus-urban-solutions/netex-to-lc/validate"
	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.Logger.Level(zerolog.InfoLevel)

	app := &cli.App{
		Name:        "netex2lc",
		Description: "Converts NeTEx timetables and SIRI real-time feeds to Linked Connections RDF",
		Commands: []*cli.Command{
			netexCommand(),
			siriCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to YAML configuration file"},
		&cli.StringFlag{Name: "output", Value: "-", Usage: "output file path, or '-' for stdout"},
		&cli.StringFlag{Name: "format", Usage: "output format: jsonld, turtle, ntriples, rdfxml"},
		&cli.StringFlag{Name: "base-uri", Usage: "base URI for generated resources"},
		&cli.BoolFlag{Name: "compact", Usage: "compact output instead of pretty-printed"},
		&cli.BoolFlag{Name: "strict", Usage: "fail on the first per-unit error instead of skipping"},
		&cli.BoolFlag{Name: "no-validate", Usage: "skip structural pre-flight checks"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "errors only"},
	}
}

func netexCommand() *cli.Command {
	return &cli.Command{
		Name:  "netex",
		Usage: "Convert NeTEx XML timetables to Linked Connections",
		Flags: append(commonFlags(),
			&cli.StringSliceFlag{Name: "input", Usage: "NeTEx XML file (repeatable)"},
			&cli.StringFlag{Name: "service-date", Usage: "service date (YYYY-MM-DD) for date-less passing times"},
		),
		Action: runNetex,
	}
}

func siriCommand() *cli.Command {
	return &cli.Command{
		Name:  "siri",
		Usage: "Convert a SIRI ET/VM/SX document to RDF",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "input", Usage: "SIRI XML file", Required: true},
			&cli.StringFlag{Name: "type", Value: "auto", Usage: "SIRI profile: et, vm, sx or auto"},
			&cli.StringFlag{Name: "service-date", Usage: "service date (YYYY-MM-DD) for time-only values"},
			&cli.IntFlag{Name: "threshold", Usage: "on-time delay threshold in seconds"},
		),
		Action: runSiri,
	}
}

// runSettings is the merged file + flag configuration for one run.
type runSettings struct {
	cfg      config.AppConfig
	format   rdf.Format
	encOpts  rdf.Options
	output   string
	validate bool
}

func settings(c *cli.Context) (runSettings, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return runSettings{}, err
	}

	if c.Bool("verbose") || cfg.Verbose {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}
	if c.Bool("quiet") || cfg.Quiet {
		log.Logger = log.Logger.Level(zerolog.ErrorLevel)
	}

	if c.IsSet("base-uri") {
		cfg.URIs.BaseURI = c.String("base-uri")
	}
	if c.IsSet("strict") {
		cfg.Processing.Strict = c.Bool("strict")
	}
	if c.IsSet("service-date") {
		cfg.Processing.ServiceDate = c.String("service-date")
	}
	if c.IsSet("threshold") {
		cfg.Processing.DelayThresholdSeconds = c.Int("threshold")
	}

	formatName := cfg.Output.Format
	if c.IsSet("format") {
		formatName = c.String("format")
	}
	format, err := rdf.ParseFormat(formatName)
	if err != nil {
		return runSettings{}, err
	}

	output := cfg.Output.Destination
	if c.IsSet("output") || output == "" {
		output = c.String("output")
	}

	pretty := cfg.Output.Pretty
	if c.Bool("compact") {
		pretty = false
	}

	return runSettings{
		cfg:      cfg,
		format:   format,
		encOpts:  rdf.Options{Pretty: pretty},
		output:   output,
		validate: !c.Bool("no-validate"),
	}, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func parseFile(path string) (*xmltree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := xmltree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// connectionChain concatenates the generators of several input files
// into one lazy sequence.
type connectionChain struct {
	iterators []rdf.ConnectionIterator
	index     int
}

func (c *connectionChain) Next() (*lc.Connection, error) {
	for c.index < len(c.iterators) {
		conn, err := c.iterators[c.index].Next()
		if err == io.EOF {
			c.index++
			continue
		}
		return conn, err
	}
	return nil, io.EOF
}

func runNetex(c *cli.Context) error {
	s, err := settings(c)
	if err != nil {
		return err
	}

	inputs := c.StringSlice("input")
	inputs = append(inputs, s.cfg.Input.NeTEx.Files...)
	if len(inputs) == 0 {
		return fmt.Errorf("no input files specified, use --input or --config")
	}

	serviceDate, _, err := s.cfg.ServiceDate()
	if err != nil {
		return err
	}
	location, err := s.cfg.Location()
	if err != nil {
		return err
	}

	sink := diag.NewSink(0)
	chain := &connectionChain{}
	for _, path := range inputs {
		doc, err := parseFile(path)
		if err != nil {
			return err
		}
		if s.validate && s.cfg.Input.NeTEx.Validate {
			if format := validate.DetectFormat(doc); format != validate.FormatNeTEx {
				log.Warn().Str("file", path).Msg("Input does not look like a NeTEx document")
			}
			validate.LogWarnings(validate.CheckNeTEx(doc))
		}
		gen := netex.NewGenerator(doc, netex.Options{
			Strategy:    s.cfg.Strategy(),
			Strict:      s.cfg.Processing.Strict,
			Sink:        sink,
			ServiceDate: serviceDate,
			Location:    location,
		})
		chain.iterators = append(chain.iterators, gen)
	}

	out, err := openOutput(s.output)
	if err != nil {
		return err
	}
	defer closeOutput(out)

	if err := rdf.Encode(out, s.format, s.encOpts, rdf.Connections(chain)); err != nil {
		return err
	}
	sink.LogSummary()
	return nil
}

func runSiri(c *cli.Context) error {
	s, err := settings(c)
	if err != nil {
		return err
	}

	doc, err := parseFile(c.String("input"))
	if err != nil {
		return err
	}

	profile := siri.ProfileUnknown
	if name := c.String("type"); name != "" && name != "auto" {
		profile, err = siri.ParseProfile(name)
		if err != nil {
			return err
		}
	} else if s.cfg.Processing.Profile != "" {
		profile, err = siri.ParseProfile(s.cfg.Processing.Profile)
		if err != nil {
			return err
		}
	}

	if s.validate {
		validate.LogWarnings(validate.CheckSIRI(doc, profile))
	}
	if profile == siri.ProfileUnknown {
		profile, err = siri.DetectProfile(doc)
		if err != nil {
			return err
		}
		log.Debug().Str("profile", string(profile)).Msg("Detected SIRI profile")
	}

	serviceDate, _, err := s.cfg.ServiceDate()
	if err != nil {
		return err
	}
	location, err := s.cfg.Location()
	if err != nil {
		return err
	}

	sink := diag.NewSink(0)
	opts := siri.Options{
		Strategy:       s.cfg.Strategy(),
		Strict:         s.cfg.Processing.Strict,
		Sink:           sink,
		ServiceDate:    serviceDate,
		Location:       location,
		DelayThreshold: s.cfg.DelayThreshold(),
	}

	var src rdf.Source
	switch profile {
	case siri.ProfileET:
		src = rdf.Connections(siri.NewETExtractor(doc, opts))
	case siri.ProfileVM:
		positions, err := siri.ExtractVehiclePositions(doc, opts)
		if err != nil {
			return err
		}
		src = rdf.VehiclePositions(positions)
	case siri.ProfileSX:
		alerts, err := siri.ExtractAlerts(doc, opts)
		if err != nil {
			return err
		}
		src = rdf.Alerts(alerts)
	default:
		return &lc.UnsupportedProfileError{Root: doc.Local}
	}

	out, err := openOutput(s.output)
	if err != nil {
		return err
	}
	defer closeOutput(out)

	if err := rdf.Encode(out, s.format, s.encOpts, src); err != nil {
		return err
	}
	sink.LogSummary()
	return nil
}

func closeOutput(w io.WriteCloser) {
	if w == os.Stdout {
		return
	}
	if err := w.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close output file")
	}
}
