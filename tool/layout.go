// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/0xsoniclabs/outcome/outcome"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var LayoutCmd = cli.Command{
	Action: addPerformanceDiagnostics(printLayouts),
	Name:   "layout",
	Usage:  "prints the placement of payloads within compact outcome words",
	Flags: []cli.Flag{
		&allLayoutsFlag,
	},
}

var allLayoutsFlag = cli.BoolFlag{
	Name:  "all",
	Usage: "print all supported layouts instead of the native one only",
}

var supportedLayouts = []outcome.Layout{
	{Order: outcome.LittleEndian, WordSize: 4},
	{Order: outcome.LittleEndian, WordSize: 8},
	{Order: outcome.BigEndian, WordSize: 4},
	{Order: outcome.BigEndian, WordSize: 8},
}

func printLayouts(context *cli.Context) error {
	layouts := []outcome.Layout{outcome.Native}
	if context.Bool(allLayoutsFlag.Name) {
		layouts = supportedLayouts
	}
	Logger().Debug("printing layouts", zap.Int("count", len(layouts)))
	for _, layout := range layouts {
		if err := printLayout(context.App.Writer, layout); err != nil {
			return err
		}
	}
	return nil
}

// printLayout lists, for every payload size fitting the given layout, the
// offset of the payload and the word image of a payload of 0xff bytes.
func printLayout(out io.Writer, layout outcome.Layout) error {
	if err := layout.Check(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%v (tag in byte %d)\n", layout, layout.TagByte())
	for size := uintptr(1); layout.Fits(size); size++ {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = 0xff
		}
		word, err := layout.Encode(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %d-byte payload: %w", size, err)
		}
		fmt.Fprintf(out, "  size %d: offset %d, word %s\n", size, layout.PayloadOffset(size), hex.EncodeToString(word))
	}
	return nil
}
