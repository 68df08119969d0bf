package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/KevinKickass/OpenIOLink/internal/pdi"
	"github.com/KevinKickass/OpenIOLink/internal/publish"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/spf13/cobra"
)

func newDecodeCommand(opts *options) *cobra.Command {
	var (
		specName string
		vendorID int
		deviceID int
		parentID string
		nodes    bool
	)

	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a process data buffer",
		Long: `Decode parses a PDI hex string and decodes every field of the device spec.

The spec is given by name, by file path or by vendor/device id. Fields that
fail to decode are listed with their error kind; the remaining fields are
still printed. With --nodes the state nodes are printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := opts.manager()
			if err != nil {
				return err
			}

			var spec *types.DeviceSpecification
			switch {
			case specName != "":
				spec, err = resolveSpec(cmd.Context(), m, specName)
			case cmd.Flags().Changed("device-id"):
				if err = m.LoadAll(cmd.Context()); err == nil {
					spec, err = m.Lookup(vendorID, deviceID)
				}
			default:
				err = errors.New("--spec or --device-id is required")
			}
			if err != nil {
				return err
			}

			res, err := pdi.Decode(args[0], spec)
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			f, err := opts.formatter(cmd)
			if err != nil {
				return err
			}

			if nodes {
				return printNodes(f, publish.Plan(parentID, res))
			}
			if err := printResult(f, res); err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("%d of %d fields failed", len(res.Failures), len(res.Fields))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specName, "spec", "", "spec name or spec file")
	cmd.Flags().IntVar(&vendorID, "vendor-id", 0, "IO-Link vendor id")
	cmd.Flags().IntVar(&deviceID, "device-id", 0, "IO-Link device id")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent id for --nodes")
	cmd.Flags().BoolVar(&nodes, "nodes", false, "print planned state nodes")

	return cmd
}

// resolveSpec accepts an existing file or a spec name known to the search paths.
func resolveSpec(ctx context.Context, m *devices.Manager, name string) (*types.DeviceSpecification, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return m.LoadFile(name)
	}

	if err := m.LoadAll(ctx); err != nil {
		return nil, err
	}
	return m.Resolve(name)
}

func printResult(f *formatter, res *pdi.Result) error {
	if f.format == formatJSON {
		failures := make([]map[string]string, 0, len(res.Failures))
		for _, fe := range res.Failures {
			failures = append(failures, map[string]string{"field": fe.Field, "kind": fe.Kind(), "error": fe.Err.Error()})
		}
		return f.json(map[string]interface{}{
			"spec":     res.Spec,
			"data":     res.Data,
			"ok":       res.OK(),
			"fields":   res.Fields,
			"failures": failures,
		})
	}

	rows := make([][]string, 0, len(res.Fields))
	for _, df := range res.Fields {
		status := df.Status
		if df.ErrorKind != "" {
			status = df.ErrorKind
		}
		rows = append(rows, []string{
			df.Name,
			formatValue(df.Value),
			df.Unit,
			status,
			fmt.Sprintf("0x%X", df.Raw),
		})
	}
	return f.table([]string{"FIELD", "VALUE", "UNIT", "STATUS", "RAW"}, rows)
}

func printNodes(f *formatter, nodes []publish.StateNode) error {
	if f.format == formatJSON {
		return f.json(nodes)
	}

	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{n.ID, string(n.Kind), n.Name, n.Role, formatValue(n.Value)})
	}
	return f.table([]string{"ID", "KIND", "NAME", "ROLE", "VALUE"}, rows)
}
