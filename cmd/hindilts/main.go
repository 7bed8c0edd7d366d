// Command hindilts converts Hindi words to IT3 phone strings.
// It provides commands for one-off and batch transcription, lexicon
// management, MaryXML annotation and the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/FocuswithJustin/hindilts/core/cache"
	"github.com/FocuswithJustin/hindilts/core/errors"
	"github.com/FocuswithJustin/hindilts/core/lexicon"
	"github.com/FocuswithJustin/hindilts/core/lts"
	"github.com/FocuswithJustin/hindilts/core/maryxml"
	"github.com/FocuswithJustin/hindilts/core/sqlite"
	"github.com/FocuswithJustin/hindilts/internal/api"
	"github.com/FocuswithJustin/hindilts/internal/batch"
	"github.com/FocuswithJustin/hindilts/internal/config"
	"github.com/FocuswithJustin/hindilts/internal/embedded"
	"github.com/FocuswithJustin/hindilts/internal/logging"
)

const version = "0.1.0"

// Output streams, swapped in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// CLI defines the command-line interface for hindilts.
var CLI struct {
	// Global flags
	Config      string `name:"config" short:"c" help:"YAML configuration file" type:"path"`
	LexiconFile string `name:"lexicon" short:"l" help:"Lexicon file (plain, gzip, xz or zstd); defaults to the embedded Hindi table" type:"path"`
	LexiconDB   string `name:"lexicon-db" help:"SQLite lexicon database" type:"path"`
	Name        string `name:"name" help:"Lexicon name inside --lexicon-db"`
	LogLevel    string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat   string `name:"log-format" help:"Log format (json, text, auto)"`

	Phonemise PhonemiseCmd `cmd:"" help:"Transcribe words given on the command line"`
	Batch     BatchCmd     `cmd:"" help:"Transcribe a whitespace-separated word list"`
	Lexicon   LexiconGroup `cmd:"" help:"Lexicon table operations"`
	MaryXML   MaryXMLCmd   `cmd:"" name:"maryxml" help:"Annotate MaryXML tokens with phones"`
	Serve     ServeCmd     `cmd:"" help:"Start the HTTP and WebSocket server"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// LexiconGroup contains lexicon table operations.
type LexiconGroup struct {
	Info   LexiconInfoCmd   `cmd:"" help:"Show the active lexicon"`
	Import LexiconImportCmd `cmd:"" help:"Store a lexicon file in --lexicon-db"`
	List   LexiconListCmd   `cmd:"" help:"List lexicons stored in --lexicon-db"`
	Export LexiconExportCmd `cmd:"" help:"Write the active lexicon in canonical form"`
	Check  LexiconCheckCmd  `cmd:"" help:"Check lexicon phones against an allophone inventory"`
}

// PhonemiseCmd transcribes words given as arguments.
type PhonemiseCmd struct {
	Words []string `arg:"" help:"Words to transcribe"`
	Trace bool     `help:"Print the unit sequence after every stage"`
	JSON  bool     `name:"json" help:"Print the full analysis as JSON"`
}

func (c *PhonemiseCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	table, _, err := loadLexicon(context.Background(), cfg)
	if err != nil {
		return err
	}

	var trace lts.TraceFunc
	if c.Trace {
		trace = func(stage string, units []lts.Unit) {
			fmt.Fprintf(stdout, "  %-20s %s\n", stage, formatUnits(units))
		}
	}
	p := newPhonemiser(table, trace)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for _, word := range c.Words {
		analysis, err := p.Analyse(word)
		if err != nil {
			return err
		}
		if c.JSON {
			if err := enc.Encode(analysis); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(stdout, "%s%s%s\n", word, batch.Separator, analysis.Phones)
	}
	return nil
}

func formatUnits(units []lts.Unit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = fmt.Sprintf("%s/%s", u.Symbol, u.Status)
	}
	return strings.Join(parts, " ")
}

// BatchCmd transcribes a word list file.
type BatchCmd struct {
	File    string `arg:"" help:"Input file, or - for standard input"`
	Out     string `short:"o" help:"Output file (default: standard output)" type:"path"`
	Workers int    `short:"w" help:"Number of worker goroutines (default from config)"`
	Align   bool   `help:"Pad words so the phone column lines up"`
}

func (c *BatchCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, _, err := loadLexicon(ctx, cfg)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(c.File)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(c.Out)
	if err != nil {
		return err
	}

	workers := cfg.Batch.Workers
	if c.Workers > 0 {
		workers = c.Workers
	}
	runner := &batch.Runner{
		Phonemiser: cache.NewTranscriptions(newPhonemiser(table, nil), cfg.Cache.Options()),
		Workers:    workers,
		Align:      c.Align || cfg.Batch.Align,
	}
	summary, err := runner.Run(ctx, in, out)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stderr, summary)
	return nil
}

// LexiconInfoCmd describes the active lexicon.
type LexiconInfoCmd struct{}

func (c *LexiconInfoCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	table, source, err := loadLexicon(context.Background(), cfg)
	if err != nil {
		return err
	}

	counts := make(map[lexicon.PhoneType]int)
	for _, e := range table.Entries() {
		counts[e.Type]++
	}
	fmt.Fprintf(stdout, "Source:      %s\n", source)
	fmt.Fprintf(stdout, "Entries:     %s\n", humanize.Comma(int64(table.Len())))
	fmt.Fprintf(stdout, "Fingerprint: %s\n", table.Fingerprint())
	for _, typ := range []lexicon.PhoneType{lexicon.Vowel, lexicon.Consonant, lexicon.ConjunctMarker, lexicon.Symbol, lexicon.Unknown} {
		if counts[typ] > 0 {
			fmt.Fprintf(stdout, "  %-4s %d\n", typ, counts[typ])
		}
	}
	return nil
}

// LexiconImportCmd stores a lexicon file in the database. Without a file
// it stores the embedded table.
type LexiconImportCmd struct {
	File string `arg:"" optional:"" help:"Lexicon file to import (default: the embedded table)" type:"existingfile"`
	As   string `name:"as" help:"Name to store the table under (default from --name or config)"`
}

func (c *LexiconImportCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cfg.Lexicon.DB == "" {
		return errors.NewValidation("lexicon-db", "required for import")
	}
	name := c.As
	if name == "" {
		name = cfg.Lexicon.Name
	}

	source := c.File
	var table *lexicon.Table
	if source == "" {
		source = "embedded:" + embedded.LexiconName
		table, err = embedded.Lexicon()
	} else {
		table, err = lexicon.Open(c.File)
	}
	if err != nil {
		return err
	}
	store, err := lexicon.OpenStore(cfg.Lexicon.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(context.Background(), name, table); err != nil {
		return err
	}
	logging.LexiconLoaded(source, table.Len(), table.Fingerprint(), "stored_as", name, "driver", sqlite.DriverName())
	fmt.Fprintf(stdout, "Imported %d entries as %q (%s)\n", table.Len(), name, table.Fingerprint())
	return nil
}

// LexiconListCmd lists stored lexicons.
type LexiconListCmd struct{}

func (c *LexiconListCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cfg.Lexicon.DB == "" {
		return errors.NewValidation("lexicon-db", "required for list")
	}
	store, err := lexicon.OpenStore(cfg.Lexicon.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.List(context.Background())
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		fmt.Fprintln(stdout, "No lexicons stored.")
		return nil
	}
	for _, l := range stored {
		fmt.Fprintf(stdout, "%-12s %6d entries  %s  %s\n",
			l.Name, l.Entries, shortFingerprint(l.Fingerprint), humanize.Time(l.CreatedAt))
	}
	return nil
}

// shortFingerprint abbreviates a stored fingerprint for listings. Rows
// written by other tools may hold shorter values.
func shortFingerprint(fp string) string {
	const n = 16
	if len(fp) <= n {
		return fp
	}
	return fp[:n]
}

// LexiconExportCmd writes the canonical text form of the active lexicon.
type LexiconExportCmd struct {
	Out         string `short:"o" help:"Output file (default: standard output)" type:"path"`
	Compression string `help:"Output compression" enum:"none,gzip,xz,zstd" default:"none"`
}

func (c *LexiconExportCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	table, _, err := loadLexicon(context.Background(), cfg)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	err = lexicon.Export(out, table, lexicon.Compression(c.Compression))
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

// LexiconCheckCmd reports lexicon phones missing from the allophone set.
type LexiconCheckCmd struct {
	Allophones string `help:"Allophone XML file (default: embedded Hindi set)" type:"existingfile"`
}

func (c *LexiconCheckCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	table, source, err := loadLexicon(context.Background(), cfg)
	if err != nil {
		return err
	}

	path := c.Allophones
	if path == "" {
		path = cfg.Lexicon.Allophones
	}
	var r io.Reader = embedded.Allophones()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errors.NewIO("open", path, err)
		}
		defer f.Close()
		r = f
	}
	inv, err := maryxml.LoadAllophones(r)
	if err != nil {
		return err
	}

	missing := table.Validate(inv)
	for _, e := range missing {
		fmt.Fprintf(stdout, "%s|%s|%s not in allophone set %s\n", e.Codepoint, e.Symbol, e.Type, inv.Name)
	}
	if len(missing) > 0 {
		return &errors.ValidationError{
			Field:   "lexicon",
			Value:   source,
			Message: fmt.Sprintf("%d phones missing from allophone set %s", len(missing), inv.Name),
		}
	}
	fmt.Fprintf(stdout, "%s: all phones present in %s (%d allophones)\n", source, inv.Name, inv.Len())
	return nil
}

// MaryXMLCmd annotates a MaryXML document.
type MaryXMLCmd struct {
	File string `arg:"" help:"MaryXML input, or - for standard input"`
	Out  string `short:"o" help:"Output file (default: standard output)" type:"path"`
}

func (c *MaryXMLCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	table, _, err := loadLexicon(context.Background(), cfg)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(c.File)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	res, err := maryxml.Annotate(in, out, cache.NewTranscriptions(newPhonemiser(table, nil), cfg.Cache.Options()))
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "annotated %d of %d tokens (%d failed)\n", res.Annotated, res.Tokens, res.Failed)
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Port      int      `help:"HTTP server port (default from config)"`
	Origins   []string `name:"allowed-origin" help:"Allowed CORS/WebSocket origin (repeatable)"`
	RateLimit int      `name:"rate-limit" help:"Requests per minute per client, 0 disables" default:"0"`
	Burst     int      `help:"Rate limit burst size" default:"20"`
}

func (c *ServeCmd) Run() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if c.Port > 0 {
		cfg.Server.Port = c.Port
	}
	if len(c.Origins) > 0 {
		cfg.Server.AllowedOrigins = c.Origins
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, source, err := loadLexicon(ctx, cfg)
	if err != nil {
		return err
	}

	srv := api.New(api.Config{
		Port:              cfg.Server.Port,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.Burst,
		Workers:           cfg.Batch.Workers,
		Version:           version,
	}, cache.NewTranscriptions(newPhonemiser(table, nil), cfg.Cache.Options()), api.LexiconInfo{
		Source:      source,
		Entries:     table.Len(),
		Fingerprint: table.Fingerprint(),
	})
	return srv.Serve(ctx)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "hindilts version %s (sqlite driver %s)\n", version, sqlite.DriverType())
	return nil
}

// Helper functions

// setup loads the configuration, applies the global flags over it and
// initialises logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}

	if CLI.LexiconFile != "" {
		cfg.Lexicon.Path = CLI.LexiconFile
		cfg.Lexicon.DB = ""
	}
	if CLI.LexiconDB != "" {
		cfg.Lexicon.DB = CLI.LexiconDB
		if CLI.LexiconFile == "" {
			cfg.Lexicon.Path = ""
		}
	}
	if CLI.Name != "" {
		cfg.Lexicon.Name = CLI.Name
	}
	if CLI.LogLevel != "" {
		cfg.Log.Level = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		cfg.Log.Format = CLI.LogFormat
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.NewValidation("log-level", err.Error())
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, errors.NewValidation("log-format", err.Error())
	}
	logging.InitLogger(level, format)
	return cfg, nil
}

// newPhonemiser builds a Phonemiser over table. When debug logging is on
// it logs the characters tokenization could not map, which the pipeline
// then drops silently. extra, if set, receives every stage as well.
func newPhonemiser(table *lexicon.Table, extra lts.TraceFunc) *lts.Phonemiser {
	debug := logging.GetLogger().Enabled(context.Background(), slog.LevelDebug)
	if !debug && extra == nil {
		return lts.New(table)
	}
	return lts.New(table, lts.WithTrace(func(stage string, units []lts.Unit) {
		if debug && stage == lts.StageTokenize {
			logDropped(units)
		}
		if extra != nil {
			extra(stage, units)
		}
	}))
}

func logDropped(units []lts.Unit) {
	for i, u := range units {
		if u.Type == lexicon.Unknown {
			logging.Debug("dropping unknown character",
				"codepoint", u.Codepoint.String(), "char", u.Symbol, "position", i)
		}
	}
}

// loadLexicon returns the table selected by cfg and a description of
// where it came from.
func loadLexicon(ctx context.Context, cfg *config.Config) (*lexicon.Table, string, error) {
	var (
		table  *lexicon.Table
		source string
		err    error
	)
	switch {
	case cfg.Lexicon.Path != "":
		source = cfg.Lexicon.Path
		table, err = lexicon.Open(cfg.Lexicon.Path)
	case cfg.Lexicon.DB != "":
		source = cfg.Lexicon.DB + "#" + cfg.Lexicon.Name
		var store *lexicon.Store
		if store, err = lexicon.OpenStore(cfg.Lexicon.DB); err == nil {
			table, err = store.Load(ctx, cfg.Lexicon.Name)
			store.Close()
		}
	default:
		source = "embedded:" + embedded.LexiconName
		table, err = embedded.Lexicon()
	}
	if err != nil {
		return nil, "", err
	}
	logging.LexiconLoaded(source, table.Len(), table.Fingerprint())
	return table, source, nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewIO("open", path, err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.NewIO("create", path, err)
	}
	return f, f.Close, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("hindilts"),
		kong.Description("Hindi letter-to-sound rules: Devanagari words to IT3 phone strings"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
