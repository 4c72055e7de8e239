// Command rvtrace-dump is a small disassembly utility for flat RV32IC
// program images, in the same role bbc-disasm's "disasm" subcommand plays
// for BBC Micro binaries: walk a byte range and print one decoded
// instruction per line.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli"

	"github.com/tracepath/rvtrace/riscv"
)

func fileLength(filename string) (int64, error) {
	fi, err := os.Stat(filename)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func disasmFile(file string, offset, length int64, loadAddress uint64) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	if offset < 0 || offset > int64(len(data)) {
		return fmt.Errorf("offset %d out of range", offset)
	}
	end := offset + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}

	model := riscv.New()
	cursor := offset
	for cursor < end {
		addr := loadAddress + uint64(cursor)
		length := uint8(4)
		if int(cursor)+1 < len(data) && riscv.IsCompressed(uint16(data[cursor])|uint16(data[cursor+1])<<8) {
			length = 2
		}
		if cursor+int64(length) > int64(len(data)) {
			fmt.Printf("%#08x: <truncated>\n", addr)
			break
		}
		in, err := model.Decode(addr, data[cursor:cursor+int64(length)], length)
		if err != nil {
			fmt.Printf("%#08x: <decode error: %v>\n", addr, err)
			cursor += int64(length)
			continue
		}
		fmt.Printf("%s\n", in)
		cursor += int64(length)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "rvtrace-dump"
	app.Usage = "Disassemble a flat RV32IC program image"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "disasm",
			Aliases:   []string{"d"},
			Usage:     "Disassemble a file",
			ArgsUsage: "file [offset] [length]",
			Action: func(c *cli.Context) error {
				args := c.Args()
				if len(args) < 1 {
					return cli.NewExitError("Insufficient arguments", 1)
				}
				file := args[0]

				fileLen, err := fileLength(file)
				if err != nil {
					return err
				}

				var offset int64
				if len(args) >= 2 {
					if offset, err = strconv.ParseInt(args[1], 0, 64); err != nil {
						return cli.NewExitError("Could not parse offset", 1)
					}
					if offset < 0 || offset > fileLen {
						return cli.NewExitError("offset out of range", 1)
					}
				}

				length := fileLen - offset
				if len(args) >= 3 {
					if length, err = strconv.ParseInt(args[2], 0, 64); err != nil {
						return cli.NewExitError("Could not parse length", 1)
					}
					if length < 0 {
						return cli.NewExitError("length cannot be negative", 1)
					}
				}

				loadAddress := c.Uint64("loadaddr")
				return disasmFile(file, offset, length, loadAddress)
			},
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "loadaddr",
					Value: 0,
					Usage: "load address of the image",
				},
			},
		},
	}
	_ = app.Run(os.Args)
}
