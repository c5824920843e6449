package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/domhash/cleaner"
	"github.com/use-agent/domhash/config"
	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/fetch"
)

type digestFlags struct {
	file   string
	url    string
	asJSON bool

	strategy      string
	ngramSize     int
	baseChunkSize int
	scalingFactor int
	maxUnits      int
	digestLength  int
	minLength     int
	hashPrefix    int

	cssSelector string
	includeTags []string
	excludeTags []string
	extractMode string
}

func (f *digestFlags) options() domhash.Options {
	return domhash.Options{
		Strategy:         domhash.Strategy(f.strategy),
		NgramSize:        f.ngramSize,
		BaseChunkSize:    f.baseChunkSize,
		ScalingFactor:    f.scalingFactor,
		MaxUnits:         f.maxUnits,
		DigestLength:     f.digestLength,
		MinContentLength: f.minLength,
		HashPrefixLength: f.hashPrefix,
	}
}

func (f *digestFlags) scope() cleaner.Scope {
	return cleaner.Scope{
		CSSSelector: f.cssSelector,
		IncludeTags: f.includeTags,
		ExcludeTags: f.excludeTags,
		ExtractMode: f.extractMode,
		SourceURL:   f.url,
	}
}

// digestOutput is printed with --json.
type digestOutput struct {
	Digest           string `json:"digest"`
	Strategy         string `json:"strategy"`
	Units            int    `json:"units"`
	NormalizedLength int    `json:"normalized_length"`
}

func newDigestCommand(stdin io.Reader) *cobra.Command {
	f := &digestFlags{}
	def := domhash.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "digest [content|-]",
		Short: "Print the digest of a document",
		Long: "Digest markup given as an argument, read from --file, fetched from --url,\n" +
			"or read from stdin when the argument is \"-\" or absent.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd.Context(), f, args, stdin)
			if err != nil {
				return err
			}
			return runDigest(cmd.OutOrStdout(), f, content)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "read markup from a file")
	fl.StringVar(&f.url, "url", "", "fetch markup from a URL")
	fl.BoolVar(&f.asJSON, "json", false, "print digest details as JSON")

	fl.StringVarP(&f.strategy, "strategy", "s", string(def.Strategy), "digest scheme: ngram or chunk")
	fl.IntVarP(&f.ngramSize, "ngram-size", "n", def.NgramSize, "words per n-gram (ngram)")
	fl.IntVar(&f.baseChunkSize, "base-chunk-size", def.BaseChunkSize, "minimum chunk size in runes (chunk)")
	fl.IntVar(&f.scalingFactor, "scaling-factor", def.ScalingFactor, "runes per extra chunk rune (chunk)")
	fl.IntVar(&f.maxUnits, "max-units", def.MaxUnits, "maximum chunks hashed (chunk)")
	fl.IntVar(&f.digestLength, "digest-length", def.DigestLength, "digest length (chunk)")
	fl.IntVar(&f.minLength, "min-length", def.MinContentLength, "minimum normalized length in runes")
	fl.IntVar(&f.hashPrefix, "hash-prefix", def.HashPrefixLength, "truncate unit hashes to N base64 chars; 0 keeps full hex")

	fl.StringVar(&f.cssSelector, "css-selector", "", "only digest nodes matching this selector")
	fl.StringSliceVar(&f.includeTags, "include-tag", nil, "only keep these elements (repeatable)")
	fl.StringSliceVar(&f.excludeTags, "exclude-tag", nil, "drop these elements (repeatable)")
	fl.StringVar(&f.extractMode, "extract-mode", cleaner.ModeFull, "full, main or prune")

	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

func readInput(ctx context.Context, f *digestFlags, args []string, stdin io.Reader) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch {
	case f.file != "":
		if len(args) > 0 {
			return "", fmt.Errorf("--file cannot be combined with a content argument")
		}
		b, err := os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.file, err)
		}
		return string(b), nil
	case f.url != "":
		if len(args) > 0 {
			return "", fmt.Errorf("--url cannot be combined with a content argument")
		}
		fcfg := config.Load().Fetch
		ctx, cancel := context.WithTimeout(ctx, fcfg.Timeout+5*time.Second)
		defer cancel()
		page, err := fetch.NewHTTPFetcher(fcfg).Fetch(ctx, f.url)
		if err != nil {
			return "", err
		}
		slog.Debug("fetched", "url", page.FinalURL, "status", page.StatusCode, "bytes", len(page.HTML))
		return page.HTML, nil
	case len(args) == 1 && args[0] != "-":
		return args[0], nil
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
}

func runDigest(out io.Writer, f *digestFlags, content string) error {
	engine, err := domhash.New(f.options())
	if err != nil {
		return err
	}

	scoped, err := f.scope().Apply(content)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := engine.Generate(scoped)
	if err != nil {
		return err
	}
	slog.Debug("digest generated",
		"strategy", res.Digest.Strategy,
		"units", res.Units,
		"normalized_length", res.NormalizedLength,
		"elapsed", time.Since(start),
	)

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(digestOutput{
			Digest:           res.Digest.String(),
			Strategy:         string(res.Digest.Strategy),
			Units:            res.Units,
			NormalizedLength: res.NormalizedLength,
		})
	}
	_, err = fmt.Fprintln(out, res.Digest.String())
	return err
}
