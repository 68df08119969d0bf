package main

import (
	"fmt"
	"strconv"

	"github.com/KevinKickass/OpenIOLink/internal/iolink"
	"github.com/spf13/cobra"
)

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the device specs found in the search paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := opts.manager()
			if err != nil {
				return err
			}
			if err := m.LoadAll(cmd.Context()); err != nil {
				return err
			}
			f, err := opts.formatter(cmd)
			if err != nil {
				return err
			}

			specs := m.Registry().List()
			if f.format == formatJSON {
				return f.json(specs)
			}

			rows := make([][]string, 0, len(specs))
			for _, spec := range specs {
				rows = append(rows, []string{
					spec.Name,
					optionalInt(spec.VendorID),
					optionalInt(spec.DeviceID),
					strconv.Itoa(len(spec.Fields)),
					spec.Description,
				})
			}
			return f.table([]string{"NAME", "VENDOR ID", "DEVICE ID", "FIELDS", "DESCRIPTION"}, rows)
		},
	}
}

func newMastersCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "masters",
		Short: "List the supported IO-Link masters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.formatter(cmd)
			if err != nil {
				return err
			}

			masters := iolink.Masters()
			if f.format == formatJSON {
				return f.json(masters)
			}

			rows := make([][]string, 0, len(masters))
			for _, m := range masters {
				rows = append(rows, []string{m.ProductCode, strconv.Itoa(m.Ports)})
			}
			return f.table([]string{"PRODUCT CODE", "PORTS"}, rows)
		},
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprint(*v)
}
