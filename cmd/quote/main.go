// Command quote prices a PINO trade offline from reserves and balances given
// on the command line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/pflag"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var errUnknownSide = errors.New("side must be buy, sell or redeem")

type options struct {
	side   string
	amount string
	asset  string

	baseETH, baseToken         string
	selectedETH, selectedToken string

	balanceETH, balanceBase, balanceSelected string
	allowanceBase, allowanceSelected         string
}

func parseFlags(args []string) (*options, error) {
	var o options
	fs := pflag.NewFlagSet("quote", pflag.ContinueOnError)

	fs.StringVarP(&o.side, "side", "s", "buy", "buy, sell or redeem")
	fs.StringVarP(&o.amount, "amount", "a", "1", "PINO amount")
	fs.StringVar(&o.asset, "asset", "eth", "asset traded against PINO: eth or token")

	fs.StringVar(&o.baseETH, "base-eth", "", "WETH reserve of the PINO pair")
	fs.StringVar(&o.baseToken, "base-token", "", "PINO reserve of the PINO pair")
	fs.StringVar(&o.selectedETH, "selected-eth", "", "WETH reserve of the selected token pair")
	fs.StringVar(&o.selectedToken, "selected-token", "", "token reserve of the selected token pair")

	fs.StringVar(&o.balanceETH, "balance-eth", "", "trader ETH balance, empty to skip checks")
	fs.StringVar(&o.balanceBase, "balance-base", "", "trader PINO balance")
	fs.StringVar(&o.balanceSelected, "balance-selected", "", "trader selected token balance")
	fs.StringVar(&o.allowanceBase, "allowance-base", "", "router allowance for PINO")
	fs.StringVar(&o.allowanceSelected, "allowance-selected", "", "router allowance for the selected token")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &o, nil
}

// amounts parses optional decimal token amounts; an empty string is nil.
func amounts(pairs map[string]string) (map[string]*uint256.Int, error) {
	out := make(map[string]*uint256.Int, len(pairs))
	for name, s := range pairs {
		if s == "" {
			continue
		}
		v, err := fixedpoint.ParseUnits(s, fixedpoint.Decimals)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (o *options) snapshot() (trade.Snapshot, error) {
	v, err := amounts(map[string]string{
		"base-eth":           o.baseETH,
		"base-token":         o.baseToken,
		"selected-eth":       o.selectedETH,
		"selected-token":     o.selectedToken,
		"balance-eth":        o.balanceETH,
		"balance-base":       o.balanceBase,
		"balance-selected":   o.balanceSelected,
		"allowance-base":     o.allowanceBase,
		"allowance-selected": o.allowanceSelected,
	})
	if err != nil {
		return trade.Snapshot{}, err
	}
	return trade.Snapshot{
		Base:              trade.Reserves{ETH: v["base-eth"], Token: v["base-token"]},
		Selected:          trade.Reserves{ETH: v["selected-eth"], Token: v["selected-token"]},
		BalanceETH:        v["balance-eth"],
		BalanceBase:       v["balance-base"],
		BalanceSelected:   v["balance-selected"],
		AllowanceBase:     v["allowance-base"],
		AllowanceSelected: v["allowance-selected"],
	}, nil
}

func run(args []string, w io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	snap, err := o.snapshot()
	if err != nil {
		return err
	}

	selected := trade.SideETH
	if !strings.EqualFold(o.asset, "eth") {
		selected = trade.SideOther
	}

	var res *trade.ValidationResult
	switch strings.ToLower(o.side) {
	case "buy":
		res, err = trade.ValidateBuy(o.amount, selected, snap)
	case "sell":
		res, err = trade.ValidateSell(o.amount, selected, snap)
	case "redeem":
		res, err = trade.ValidateRedeem(o.amount, snap)
	default:
		return fmt.Errorf("%w: %q", errUnknownSide, o.side)
	}
	if err != nil {
		return fmt.Errorf("%s %s PINO: %w", o.side, o.amount, err)
	}

	render(w, o, res)
	return nil
}

func render(w io.Writer, o *options, res *trade.ValidationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("%s %s PINO", strings.ToLower(o.side), o.amount)
	t.AppendHeader(table.Row{"", "Amount", "Base units"})

	row := func(name string, x *uint256.Int) {
		if x == nil {
			return
		}
		disp, err := fixedpoint.FormatAmount(x, fixedpoint.Decimals, 6, true)
		if err != nil {
			disp = "n/a"
		}
		t.AppendRow(table.Row{name, disp, x.Dec()})
	}
	row("Input", res.Input)
	row("Maximum input", res.MaximumInput)
	row("Output", res.Output)
	row("Minimum output", res.MinimumOutput)
	if res.Route != nil && res.Route.Intermediate != nil {
		row("Via ETH", res.Route.Intermediate)
	}

	t.AppendSeparator()
	status := "ok"
	if res.Err != nil {
		status = res.Err.Error()
	}
	t.AppendRow(table.Row{"Status", status, status}, table.RowConfig{AutoMerge: true, AutoMergeAlign: text.AlignLeft})
	t.Render()
}
