package circuit

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
	"github.com/qec-dojo/surface17-engine/core"
)

const CIRCUIT_SETTING_KEY = "circuit"

type BuilderSetting struct {
	Barriers      bool `toml:"barriers"`
	ResetAncillas bool `toml:"reset_ancillas"`
}

func NewBuilderSetting() BuilderSetting {
	return BuilderSetting{
		Barriers:      true,
		ResetAncillas: true,
	}
}

// Builder emits the one-cycle syndrome-extraction circuit of a layout as
// OpenQASM 3. Each stabilizer gets one ancilla: Z-basis checks accumulate
// parity with data-to-ancilla CNOTs, X-basis checks conjugate the same
// pattern with Hadamards on the ancilla.
type Builder struct {
	setting BuilderSetting
}

func (b *Builder) Setup(_ *core.Conf) error {
	s, ok := core.GetComponentSetting(CIRCUIT_SETTING_KEY)
	if !ok {
		zap.L().Debug("circuit setting is not found")
		b.setting = NewBuilderSetting()
		return nil
	}
	zap.L().Debug(fmt.Sprintf("circuit setting:%v", s))

	// TODO: fix this adhoc
	mapped, ok := s.(map[string]interface{})
	if !ok {
		b.setting = NewBuilderSetting()
	} else {
		b.setting = NewBuilderSetting()
		if v, ok := mapped["barriers"].(bool); ok {
			b.setting.Barriers = v
		}
		if v, ok := mapped["reset_ancillas"].(bool); ok {
			b.setting.ResetAncillas = v
		}
	}
	return nil
}

func (b *Builder) Build(l *code.Layout) (string, error) {
	if l == nil {
		return "", fmt.Errorf("layout is nil")
	}
	if err := l.Validate(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to build a circuit for layout %s/reason:%s",
			l.Name, err))
		return "", err
	}
	n := l.NumStabilizers()
	var sb strings.Builder
	fmt.Fprintf(&sb, "OPENQASM 3;\n")
	fmt.Fprintf(&sb, "include \"stdgates.inc\";\n")
	fmt.Fprintf(&sb, "qubit[%d] data;\n", l.DataQubits)
	fmt.Fprintf(&sb, "qubit[%d] anc;\n", n)
	fmt.Fprintf(&sb, "bit[%d] syndrome;\n", n)
	if b.setting.ResetAncillas {
		fmt.Fprintf(&sb, "reset anc;\n")
	}
	for i := range l.Stabilizers {
		s := &l.Stabilizers[i]
		basis, err := s.BasisPauli()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "// %s\n", s.Name)
		if basis == code.X {
			fmt.Fprintf(&sb, "h anc[%d];\n", i)
			for _, q := range s.Support {
				fmt.Fprintf(&sb, "cx anc[%d], data[%d];\n", i, q)
			}
			fmt.Fprintf(&sb, "h anc[%d];\n", i)
		} else {
			for _, q := range s.Support {
				fmt.Fprintf(&sb, "cx data[%d], anc[%d];\n", q, i)
			}
		}
		if b.setting.Barriers {
			fmt.Fprintf(&sb, "barrier;\n")
		}
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "syndrome[%d] = measure anc[%d];\n", i, i)
	}
	qasm := sb.String()
	zap.L().Debug(fmt.Sprintf("built a circuit for layout %s/stabilizers:%d/length:%d",
		l.Name, n, len(qasm)))
	return qasm, nil
}

func (b *Builder) TearDown() {}
