package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/walletmux/config"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/provider"
)

const probeTimeout = 3 * time.Second

// providerRow is one line of the providers listing.
type providerRow struct {
	provider.ProviderInfo
	ChainID   string `json:"chainId,omitempty"`
	Preferred bool   `json:"preferred"`
	Error     string `json:"error,omitempty"`
}

func newProvidersCmd(load func() (*config.Config, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the wallets that announce themselves and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger.Init(cfg.Logging)
			logger.RegisterDefaults(componentLoggers...)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rows, err := listProviders(ctx, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			return writeTable(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// listProviders runs discovery once and probes every announced wallet for its
// chain id.
func listProviders(ctx context.Context, cfg *config.Config) ([]providerRow, error) {
	st, err := discover(ctx, cfg, logger.Get("provider"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.close() }()

	preferred, _ := st.proxy.SelectPreferred(cfg.Preferred...)

	records := st.proxy.Providers()
	rows := make([]providerRow, 0, len(records))
	for _, rec := range records {
		row := providerRow{ProviderInfo: rec.Info(), Preferred: rec == preferred}
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		res, err := rec.Provider().Request(pctx, provider.RequestArguments{Method: "eth_chainId"})
		cancel()
		if err != nil {
			row.Error = err.Error()
		} else {
			row.ChainID = chainIDString(res)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func chainIDString(res any) string {
	switch v := res.(type) {
	case string:
		return v
	case json.RawMessage:
		var s string
		if json.Unmarshal(v, &s) == nil {
			return s
		}
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func writeTable(w io.Writer, rows []providerRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No wallets announced.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRDNS\tUUID\tCHAIN\tPREFERRED")
	for _, r := range rows {
		chain := r.ChainID
		if chain == "" {
			chain = "offline"
		}
		mark := ""
		if r.Preferred {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, dash(r.RDNS), r.UUID, chain, mark)
	}
	return tw.Flush()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
