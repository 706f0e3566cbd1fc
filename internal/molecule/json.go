package molecule

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type chainJSON struct {
	Type        Kind        `json:"type"`
	Atoms       []string    `json:"atoms"`
	Bonds       []string    `json:"bonds"`
	Attachments Attachments `json:"attachments,omitempty"`
	LeadingBond string      `json:"leading_bond,omitempty"`
}

type ringJSON struct {
	Type          Kind           `json:"type"`
	BaseSymbol    string         `json:"base_symbol"`
	Size          int            `json:"size"`
	RingNumber    int            `json:"ring_number"`
	FusionOffset  int            `json:"fusion_offset"`
	Substitutions map[int]string `json:"substitutions,omitempty"`
	Attachments   Attachments    `json:"attachments,omitempty"`
	Bonds         []string       `json:"bonds"`
	LeadingBond   string         `json:"leading_bond,omitempty"`
}

type fusedJSON struct {
	Type        Kind    `json:"type"`
	Rings       []*Ring `json:"rings"`
	Layout      *Layout `json:"layout,omitempty"`
	LeadingBond string  `json:"leading_bond,omitempty"`
}

type sequenceJSON struct {
	Type       Kind   `json:"type"`
	Components []Node `json:"components"`
}

type layoutJSON struct {
	Atoms               []LayoutAtom `json:"atoms"`
	RingPositions       [][]int      `json:"ring_positions"`
	Sequential          []*Ring      `json:"sequential,omitempty"`
	SequentialPositions [][]int      `json:"sequential_positions,omitempty"`
	Extra               Attachments  `json:"extra,omitempty"`
}

func (c *Chain) MarshalJSON() ([]byte, error) {
	return json.Marshal(chainJSON{
		Type:        KindChain,
		Atoms:       nonNil(c.Atoms),
		Bonds:       nonNil(c.Bonds),
		Attachments: c.Attachments,
		LeadingBond: c.LeadingBond,
	})
}

func (r *Ring) MarshalJSON() ([]byte, error) {
	return json.Marshal(ringJSON{
		Type:          KindRing,
		BaseSymbol:    r.BaseSymbol,
		Size:          r.Size,
		RingNumber:    r.RingNumber,
		FusionOffset:  r.FusionOffset,
		Substitutions: r.Substitutions,
		Attachments:   r.Attachments,
		Bonds:         nonNil(r.Bonds),
		LeadingBond:   r.LeadingBond,
	})
}

func (f *FusedRing) MarshalJSON() ([]byte, error) {
	return json.Marshal(fusedJSON{
		Type:        KindFusedRing,
		Rings:       f.Rings,
		Layout:      f.Layout,
		LeadingBond: f.LeadingBond,
	})
}

func (s *Sequence) MarshalJSON() ([]byte, error) {
	comps := s.Components
	if comps == nil {
		comps = []Node{}
	}
	return json.Marshal(sequenceJSON{Type: KindSequence, Components: comps})
}

func (l *Layout) MarshalJSON() ([]byte, error) {
	return json.Marshal(layoutJSON{
		Atoms:               l.Atoms,
		RingPositions:       l.RingPositions,
		Sequential:          l.Sequential,
		SequentialPositions: l.SequentialPositions,
		Extra:               l.Extra,
	})
}

// DecodeNode reads the JSON form written by the MarshalJSON methods.
func DecodeNode(data []byte) (Node, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}

	switch head.Type {
	case KindChain:
		var raw struct {
			Atoms       []string                   `json:"atoms"`
			Bonds       []string                   `json:"bonds"`
			Attachments map[string]json.RawMessage `json:"attachments"`
			LeadingBond string                     `json:"leading_bond"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode chain: %w", err)
		}
		att, err := decodeAttachments(raw.Attachments)
		if err != nil {
			return nil, err
		}
		return &Chain{Atoms: raw.Atoms, Bonds: raw.Bonds, Attachments: att, LeadingBond: raw.LeadingBond}, nil

	case KindRing:
		return decodeRing(data)

	case KindFusedRing:
		var raw struct {
			Rings       []json.RawMessage `json:"rings"`
			Layout      json.RawMessage   `json:"layout"`
			LeadingBond string            `json:"leading_bond"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode fused ring: %w", err)
		}
		f := &FusedRing{LeadingBond: raw.LeadingBond}
		for _, rr := range raw.Rings {
			r, err := decodeRing(rr)
			if err != nil {
				return nil, err
			}
			f.Rings = append(f.Rings, r)
		}
		if len(raw.Layout) > 0 && string(raw.Layout) != "null" {
			l, err := decodeLayout(raw.Layout)
			if err != nil {
				return nil, err
			}
			f.Layout = l
		}
		return f, nil

	case KindSequence:
		var raw struct {
			Components []json.RawMessage `json:"components"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode sequence: %w", err)
		}
		s := &Sequence{}
		for _, c := range raw.Components {
			n, err := DecodeNode(c)
			if err != nil {
				return nil, err
			}
			s.Components = append(s.Components, n)
		}
		return s, nil
	}

	return nil, fmt.Errorf("decode node: unknown node type %q", head.Type)
}

func decodeRing(data []byte) (*Ring, error) {
	var raw struct {
		Type          Kind                       `json:"type"`
		BaseSymbol    string                     `json:"base_symbol"`
		Size          int                        `json:"size"`
		RingNumber    int                        `json:"ring_number"`
		FusionOffset  int                        `json:"fusion_offset"`
		Substitutions map[int]string             `json:"substitutions"`
		Attachments   map[string]json.RawMessage `json:"attachments"`
		Bonds         []string                   `json:"bonds"`
		LeadingBond   string                     `json:"leading_bond"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode ring: %w", err)
	}
	if raw.Type != KindRing {
		return nil, fmt.Errorf("decode ring: unexpected node type %q", raw.Type)
	}
	att, err := decodeAttachments(raw.Attachments)
	if err != nil {
		return nil, err
	}
	return &Ring{
		BaseSymbol:    raw.BaseSymbol,
		Size:          raw.Size,
		RingNumber:    raw.RingNumber,
		FusionOffset:  raw.FusionOffset,
		Substitutions: raw.Substitutions,
		Attachments:   att,
		Bonds:         raw.Bonds,
		LeadingBond:   raw.LeadingBond,
	}, nil
}

func decodeLayout(data []byte) (*Layout, error) {
	var raw struct {
		Atoms               []LayoutAtom               `json:"atoms"`
		RingPositions       [][]int                    `json:"ring_positions"`
		Sequential          []json.RawMessage          `json:"sequential"`
		SequentialPositions [][]int                    `json:"sequential_positions"`
		Extra               map[string]json.RawMessage `json:"extra"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	l := &Layout{
		Atoms:               raw.Atoms,
		RingPositions:       raw.RingPositions,
		SequentialPositions: raw.SequentialPositions,
	}
	for _, rr := range raw.Sequential {
		r, err := decodeRing(rr)
		if err != nil {
			return nil, err
		}
		l.Sequential = append(l.Sequential, r)
	}
	extra, err := decodeAttachments(raw.Extra)
	if err != nil {
		return nil, err
	}
	l.Extra = extra
	return l, nil
}

func decodeAttachments(raw map[string]json.RawMessage) (Attachments, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(Attachments, len(raw))
	for key, val := range raw {
		pos, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode attachments: bad position %q", key)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(val, &items); err != nil {
			return nil, fmt.Errorf("decode attachments at %d: %w", pos, err)
		}
		for _, item := range items {
			n, err := DecodeNode(item)
			if err != nil {
				return nil, err
			}
			out[pos] = append(out[pos], n)
		}
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
