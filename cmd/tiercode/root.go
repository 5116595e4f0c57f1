package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/config"
	"github.com/poku-e/tubtakes/internal/observability"
	"github.com/poku-e/tubtakes/internal/remapstore"
	"github.com/poku-e/tubtakes/internal/share"
	"github.com/poku-e/tubtakes/internal/shortcode"
	"github.com/poku-e/tubtakes/internal/tier"
	"github.com/poku-e/tubtakes/internal/tiercode"
)

type options struct {
	configPath  string
	catalogPath string
	remapPath   string
	slot        string
	asJSON      bool
}

type app struct {
	svc    *share.Service
	logger *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tiercode",
		Short:         "Encode, decode and shorten tier list share codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("TUBTAKES_CONFIG"), "YAML config file")
	pf.StringVar(&opts.catalogPath, "catalog", "", "Catalog JSON file (overrides config)")
	pf.StringVar(&opts.remapPath, "remap", "", "Remap table file (overrides config)")
	pf.StringVar(&opts.slot, "slot", shortcode.DefaultSlot, "Remap table slot")
	pf.BoolVar(&opts.asJSON, "json", false, "Print JSON")

	root.AddCommand(
		newEncodeCmd(opts),
		newDecodeCmd(opts),
		newCompressCmd(opts),
		newDecompressCmd(opts),
		newForgetCmd(opts),
	)
	return root
}

// setup loads config and builds the share pipeline. The in-memory remap
// backend is useless across invocations, so it is swapped for the file one.
func (o *options) setup() (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.catalogPath != "" {
		cfg.Catalog.Path = o.catalogPath
	}
	if o.remapPath != "" {
		cfg.Remap.Path = o.remapPath
		cfg.Remap.Backend = config.RemapBackendFile
	}
	if cfg.Remap.Backend == config.RemapBackendMemory {
		cfg.Remap.Backend = config.RemapBackendFile
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	store, err := remapstore.Open(cfg.Remap)
	if err != nil {
		return nil, err
	}
	cat := catalog.LoadOrFallback(cfg.Catalog.Path, logger)
	comp := shortcode.New(store, shortcode.WithLogger(logger), shortcode.WithSlot(o.slot))
	return &app{
		svc:    share.New(cat, comp, share.WithLogger(logger), share.WithPublicURL(cfg.Server.PublicURL)),
		logger: logger,
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTiers(w io.Writer, a tier.Assignment) {
	for _, t := range tier.Order {
		fmt.Fprintf(w, "%s: %s\n", t, strings.Join(a[t], ", "))
	}
}

// parseTierArgs reads arguments of the form "S=Blue Ice,Sour Cherry".
func parseTierArgs(args []string) (tier.Assignment, error) {
	a := tier.NewAssignment()
	for _, arg := range args {
		label, names, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%q: want TIER=flavor,flavor", arg)
		}
		t, err := tier.ParseLabel(strings.TrimSpace(label))
		if err != nil {
			return nil, err
		}
		for _, n := range strings.Split(names, ",") {
			if n = strings.TrimSpace(n); n != "" {
				a.Add(t, n)
			}
		}
	}
	return a, nil
}

func newEncodeCmd(opts *options) *cobra.Command {
	var versioned bool
	cmd := &cobra.Command{
		Use:   "encode TIER=flavor,flavor ...",
		Short: "Encode a tier list into a share code and short code",
		Long: `Encode a tier list into a share code and short code.

With --versioned only the code and link carry the version marker. The short
code and chat command never do: they expand to the unversioned code, which
decodes to the same tier list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseTierArgs(args)
			if err != nil {
				return err
			}
			env, err := opts.setup()
			if err != nil {
				return err
			}
			a = env.svc.Resolve(a)
			sh, err := env.svc.Export(cmd.Context(), a, opts.slot)
			if err != nil {
				return err
			}
			if versioned {
				sh.Code, _ = tiercode.EncodeVersioned(a, env.svc.Catalog())
				sh.Link = env.svc.Link(sh.Code)
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, sh)
			}
			fmt.Fprintf(out, "code:    %s\nshort:   %s\ncommand: %s\nlink:    %s\n", sh.Code, sh.Short, sh.Command, sh.Link)
			for _, u := range sh.Report.Unresolved {
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown flavor dropped: %s\n", u)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&versioned, "versioned", false, "Prefix the code's raw text with the version marker (short code unaffected)")
	return cmd
}

func newDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode CODE",
		Short: "Decode a tier code, short code or chat command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup()
			if err != nil {
				return err
			}
			imp, err := env.svc.Import(cmd.Context(), strings.Join(args, " "), opts.slot)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, imp)
			}
			printTiers(out, imp.Tiers)
			if imp.RemapMissing {
				fmt.Fprintf(cmd.ErrOrStderr(), "remap table missing: %d flavors shown as %s\n", imp.Placeholders, shortcode.Placeholder)
			}
			for _, u := range imp.Unresolved {
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown code dropped: %s\n", u)
			}
			return nil
		},
	}
}

func newCompressCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compress CODE",
		Short: "Shorten a tier code and keep its remap table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup()
			if err != nil {
				return err
			}
			short, err := env.svc.Compress(cmd.Context(), args[0], opts.slot)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{"short": short, "command": shortcode.ChatCommand(short)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), short)
			return nil
		},
	}
}

func newDecompressCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decompress SHORT",
		Short: "Expand a short code back into a tier code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup()
			if err != nil {
				return err
			}
			exp, err := env.svc.Decompress(cmd.Context(), args[0], opts.slot)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), exp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), exp.Code)
			if !exp.Exact {
				fmt.Fprintf(cmd.ErrOrStderr(), "lossy: %d placeholders\n", exp.Placeholders)
			}
			return nil
		},
	}
}

func newForgetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Delete the stored remap table for the slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.setup()
			if err != nil {
				return err
			}
			if err := env.svc.Forget(cmd.Context(), opts.slot); err != nil {
				return err
			}
			env.logger.Debug("remap table forgotten", zap.String("slot", opts.slot))
			return nil
		},
	}
}
