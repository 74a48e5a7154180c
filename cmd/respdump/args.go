package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/morikuni/resp/resp"
	"github.com/morikuni/resp/resp/buffer"
)

func buildArguments() *cli.App {
	app := cli.NewApp()
	app.Name = "respdump"
	app.Usage = "decode a RESP v2 byte stream and print the message tree"
	app.Commands = []cli.Command{
		{
			Name:      "dump",
			Usage:     "decode messages from a file or stdin and print them",
			UsageText: "respdump dump [-file path] [-roundtrip]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file",
					Usage: "path to a file holding raw RESP bytes; defaults to stdin",
				},
				cli.BoolFlag{
					Name:  "roundtrip",
					Usage: "re-encode every decoded message, decode it again and verify the result equals the original message",
				},
			},
			Action: func(c *cli.Context) error {
				return runDump(c.String("file"), c.Bool("roundtrip"))
			},
		},
	}
	app.Action = func(c *cli.Context) error {
		return runDump("", false)
	}
	return app
}

func runDump(path string, roundtrip bool) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("respdump: reading input: %w", err)
	}

	agg := resp.NewAggregator(resp.NewDecoder())
	buf := buffer.Wrap(raw)

	count := 0
	for {
		msg, err := agg.Next(buf)
		if err != nil {
			return fmt.Errorf("respdump: decoding message %d: %w", count+1, err)
		}
		if msg == nil {
			break
		}
		count++

		printMessage(os.Stdout, msg, 0)

		if roundtrip {
			if err := verifyRoundTrip(msg); err != nil {
				return fmt.Errorf("respdump: message %d failed round-trip: %w", count, err)
			}
		}

		if err := msg.Release(); err != nil {
			return fmt.Errorf("respdump: releasing message %d: %w", count, err)
		}
	}

	fmt.Fprintf(os.Stderr, "decoded %d message(s)\n", count)
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("respdump: opening %s: %w", path, err)
	}
	return f, nil
}

func verifyRoundTrip(msg *resp.Message) error {
	out, err := resp.Encode(msg)
	if err != nil {
		return err
	}
	defer out.Release()

	agg := resp.NewAggregator(resp.NewDecoder())
	in := buffer.Wrap(append([]byte{}, out.Bytes()...))
	again, err := agg.Next(in)
	if err != nil {
		return err
	}
	if !resp.Equal(msg, again) {
		return fmt.Errorf("re-decoded message does not match the original")
	}
	return again.Release()
}
