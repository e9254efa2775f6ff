// etfdump is a small command-line front end over the etf codec: decode a
// wire payload to a readable Go-syntax dump, encode a literal back to wire
// bytes, or round-trip a payload and report whether it reproduces exactly.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/erlbridge/etf/etf"
	"github.com/erlbridge/etf/internal/elog"
	"github.com/erlbridge/etf/internal/version"
)

var stdout = colorable.NewColorableStdout()

func initTerminal(c *cli.Context) {
	switch {
	case c.GlobalBool("no-color"):
		color.NoColor = true
	case c.GlobalBool("color"):
		color.NoColor = false
	default:
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

func readInput(c *cli.Context, argIndex int) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path := c.Args().Get(argIndex); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if c.GlobalBool("hex") {
		trimmed := trimHex(raw)
		decoded := make([]byte, hex.DecodedLen(len(trimmed)))
		n, err := hex.Decode(decoded, trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return decoded[:n], nil
	}
	return raw, nil
}

// trimHex strips whitespace, returning a new slice so repeated or aliased
// calls never observe a partially-compacted input.
func trimHex(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		switch b {
		case ' ', '\n', '\r', '\t':
			continue
		}
		out = append(out, b)
	}
	return out
}

// formatTerm renders a decoded term the way spec.md §4.7 renders an Atom
// (`Atom(b'name')`) and Go's own %#v renders everything else.
func formatTerm(term etf.Term) string {
	return fmt.Sprintf("%#v", term)
}

// decodeErrLevel distinguishes IncompleteDataError ("still streaming" — the
// file may just be mid-write) from every other decode failure ("corrupt
// input") so a human tailing a growing file can tell the two apart at a
// glance, per the log-level split spec.md's §7 expansion calls for.
func decodeErrLevel(err error) logging.Level {
	if _, ok := err.(*etf.IncompleteDataError); ok {
		return logging.NOTICE
	}
	return logging.ERROR
}

func logDecodeErr(log *logging.Logger, err error) {
	if decodeErrLevel(err) == logging.NOTICE {
		log.Noticef("incomplete data: %s", err)
		return
	}
	log.Errorf("decode error: %s", err)
}

func decodeCommand(c *cli.Context) error {
	initTerminal(c)
	log := elog.Setup(logging.NOTICE)

	raw, err := readInput(c, 0)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	term, rest, err := etf.Decode(raw)
	if err != nil {
		logDecodeErr(log, err)
		return cli.NewExitError(color.RedString("decode failed: %s", err), 1)
	}
	log.Infof("decoded %d bytes, %d trailing", len(raw)-len(rest), len(rest))

	out := formatTerm(term)
	fmt.Fprintln(stdout, color.GreenString(out))
	if len(rest) > 0 {
		fmt.Fprintln(stdout, color.YellowString("trailing %d byte(s): %s", len(rest), hex.EncodeToString(rest)))
	}
	if c.Bool("copy") {
		if err := clipboard.WriteAll(out); err != nil {
			log.Warningf("clipboard copy failed: %s", err)
		}
	}
	return nil
}

func encodeCommand(c *cli.Context) error {
	initTerminal(c)
	log := elog.Setup(logging.NOTICE)

	raw, err := readInput(c, 0)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	compress := etf.NoCompress
	if c.Bool("compress") {
		compress = etf.DefaultCompress
	}
	atom, err := etf.NewAtom(raw)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	encoded, err := etf.Encode(atom, compress)
	if err != nil {
		log.Errorf("encode error: %s", err)
		return cli.NewExitError(color.RedString("encode failed: %s", err), 1)
	}
	log.Infof("encoded to %d bytes", len(encoded))

	out := hex.EncodeToString(encoded)
	fmt.Fprintln(stdout, color.GreenString(out))
	if c.Bool("copy") {
		if err := clipboard.WriteAll(out); err != nil {
			log.Warningf("clipboard copy failed: %s", err)
		}
	}
	return nil
}

func roundtripCommand(c *cli.Context) error {
	initTerminal(c)
	log := elog.Setup(logging.NOTICE)

	raw, err := readInput(c, 0)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	term, rest, err := etf.Decode(raw)
	if err != nil {
		logDecodeErr(log, err)
		return cli.NewExitError(color.RedString("decode failed: %s", err), 1)
	}
	reencoded, err := etf.Encode(term, etf.NoCompress)
	if err != nil {
		log.Errorf("encode error: %s", err)
		return cli.NewExitError(color.RedString("re-encode failed: %s", err), 1)
	}

	consumed := raw[:len(raw)-len(rest)]
	if hex.EncodeToString(consumed) == hex.EncodeToString(reencoded) {
		fmt.Fprintln(stdout, color.GreenString("OK: round-trip matches (%d bytes)", len(reencoded)))
		return nil
	}
	log.Warning("round-trip byte mismatch")
	fmt.Fprintln(stdout, color.RedString("MISMATCH"))
	fmt.Fprintf(stdout, "  in:  %s\n", hex.EncodeToString(consumed))
	fmt.Fprintf(stdout, "  out: %s\n", hex.EncodeToString(reencoded))
	return cli.NewExitError("", 1)
}

func main() {
	app := cli.NewApp()
	app.Name = "etfdump"
	app.Usage = "inspect and round-trip Erlang External Term Format payloads"
	app.Version = version.Current.String()
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "hex", Usage: "treat input as hex text instead of raw bytes"},
		cli.BoolFlag{Name: "color", Usage: "force colored output"},
		cli.BoolFlag{Name: "no-color", Usage: "force plain output"},
	}
	app.Commands = []cli.Command{
		{
			Name:      "decode",
			Usage:     "decode a term from stdin or a file and print it",
			ArgsUsage: "[file]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "copy", Usage: "copy the printed term to the clipboard"},
			},
			Action: decodeCommand,
		},
		{
			Name:      "encode",
			Usage:     "encode stdin or a file's bytes as an ETF atom literal",
			ArgsUsage: "[file]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "compress", Usage: "wrap the output in the deflate envelope"},
				cli.BoolFlag{Name: "copy", Usage: "copy the hex output to the clipboard"},
			},
			Action: encodeCommand,
		},
		{
			Name:      "roundtrip",
			Usage:     "decode then re-encode a payload and report whether it matches byte-for-byte",
			ArgsUsage: "[file]",
			Action:    roundtripCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
