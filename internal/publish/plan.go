// Package publish describes where decoded process data lands in a hierarchical
// state tree. It does not talk to any store; a Publisher does.
package publish

import (
	"context"
	"errors"
	"strings"

	"github.com/KevinKickass/OpenIOLink/internal/pdi"
	"github.com/KevinKickass/OpenIOLink/internal/types"
)

type NodeKind string

const (
	KindDevice  NodeKind = "device"
	KindChannel NodeKind = "channel"
	KindState   NodeKind = "state"
)

const RoleStatus = "info.status"

// StateNode is one object of the state tree: a container (device, channel) or
// a state carrying a value.
type StateNode struct {
	ID    string             `json:"id"`
	Kind  NodeKind           `json:"kind"`
	Name  string             `json:"name"`
	Role  string             `json:"role,omitempty"`
	Type  types.SemanticType `json:"type,omitempty"`
	Unit  string             `json:"unit,omitempty"`
	Value any                `json:"value,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, nodes []StateNode) error
}

// Multi fans nodes out to several publishers. All publishers are tried.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, nodes []StateNode) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, nodes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Join builds a dotted state id, skipping empty parts.
func Join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

func Channel(id, name string) StateNode {
	return StateNode{ID: id, Kind: KindChannel, Name: name}
}

func Device(id, name string) StateNode {
	return StateNode{ID: id, Kind: KindDevice, Name: name}
}

func State(id, name, role string, typ types.SemanticType, value any, unit string) StateNode {
	return StateNode{ID: id, Kind: KindState, Name: name, Role: role, Type: typ, Value: value, Unit: unit}
}

// Plan lays out the decoded fields below parentID. Channel fields get a
// channel node with "status" and "value" states; flat fields put "<id>" and
// "<id>_status" directly under the parent. Failed fields keep their nodes with
// a nil value and the error kind as status.
func Plan(parentID string, res *pdi.Result) []StateNode {
	if res == nil {
		return nil
	}

	nodes := make([]StateNode, 0, len(res.Fields)*2)
	for _, f := range res.Fields {
		if f.Shape == types.ShapeChannel {
			nodes = append(nodes, Channel(Join(parentID, f.ID), f.Name))
			if f.StatusID != "" {
				nodes = append(nodes, State(Join(parentID, f.StatusID), "Status", RoleStatus, types.SemanticString, f.Status, ""))
			}
			if f.ValueID != "" {
				nodes = append(nodes, State(Join(parentID, f.ValueID), "Value", f.Role, f.Type, f.Value, f.Unit))
			}
			continue
		}

		if f.StatusID != "" {
			nodes = append(nodes, State(Join(parentID, f.StatusID), f.Name+" Status", RoleStatus, types.SemanticString, f.Status, ""))
		}
		if f.ValueID != "" {
			nodes = append(nodes, State(Join(parentID, f.ValueID), f.Name, f.Role, f.Type, f.Value, f.Unit))
		}
	}
	return nodes
}
