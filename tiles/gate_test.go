package tiles

import "testing"

func TestGateEmptyInputSetIsLow(t *testing.T) {
	for _, k := range []Kind{GateDiode, GateBuffer, GateNot, GateAnd, GateNand, GateOr, GateNor, GateXor, GateXnor} {
		next, _, _ := EvaluateGate(k, GateInputs{}, true)
		if next != Low {
			t.Errorf("%v with empty inputs = %v, want Low", k, next)
		}
	}
}

func TestDiodePassesSingleInputThrough(t *testing.T) {
	next, _, _ := EvaluateGate(GateDiode, GateInputs{Front: High}, true)
	if next != High {
		t.Errorf("diode(High) = %v, want High", next)
	}
	next, _, _ = EvaluateGate(GateDiode, GateInputs{Front: Middle}, true)
	if next != Middle {
		t.Errorf("diode(Middle, extra=true) = %v, want Middle", next)
	}
	next, _, _ = EvaluateGate(GateDiode, GateInputs{Front: Middle}, false)
	if next != Low {
		t.Errorf("diode(Middle, extra=false) = %v, want Low", next)
	}
}

func TestBufferSingleInputAnySide(t *testing.T) {
	next, _, _ := EvaluateGate(GateBuffer, GateInputs{Left: High}, true)
	if next != High {
		t.Errorf("buffer(Left=High) = %v, want High", next)
	}
	next, _, _ = EvaluateGate(GateBuffer, GateInputs{Right: High}, true)
	if next != High {
		t.Errorf("buffer(Right=High) = %v, want High", next)
	}
}

func TestBufferControlGatesDataWithExtraStates(t *testing.T) {
	next, _, _ := EvaluateGate(GateBuffer, GateInputs{Front: High, Left: High}, true)
	if next != High {
		t.Errorf("buffer(data=High, control=High) = %v, want High", next)
	}
	next, _, _ = EvaluateGate(GateBuffer, GateInputs{Front: High, Left: Low}, true)
	if next != Middle {
		t.Errorf("buffer(data=High, control=Low) = %v, want Middle", next)
	}
	next, _, _ = EvaluateGate(GateBuffer, GateInputs{Front: High, Right: High}, true)
	if next != High {
		t.Errorf("buffer(data=High, control on Right) = %v, want High", next)
	}
}

func TestNotInvertsBuffer(t *testing.T) {
	next, _, _ := EvaluateGate(GateNot, GateInputs{Front: High}, true)
	if next != Low {
		t.Errorf("not(High) = %v, want Low", next)
	}
	next, _, _ = EvaluateGate(GateNot, GateInputs{Front: Low}, true)
	if next != High {
		t.Errorf("not(Low) = %v, want High", next)
	}
	next, _, _ = EvaluateGate(GateNot, GateInputs{Front: Middle}, true)
	if next != Middle {
		t.Errorf("not(Middle) = %v, want Middle (self-complementary)", next)
	}
}

func TestAndRequiresAllHighAndAtLeastTwoInputs(t *testing.T) {
	next, _, _ := EvaluateGate(GateAnd, GateInputs{Front: High}, true)
	if next != Low {
		t.Errorf("and with 1 connected input = %v, want Low", next)
	}
	next, _, _ = EvaluateGate(GateAnd, GateInputs{Front: High, Left: High}, true)
	if next != High {
		t.Errorf("and(High,High) = %v, want High", next)
	}
	next, _, _ = EvaluateGate(GateAnd, GateInputs{Front: High, Left: Low}, true)
	if next != Low {
		t.Errorf("and(High,Low) = %v, want Low", next)
	}
	next, _, _ = EvaluateGate(GateAnd, GateInputs{Front: High, Left: Middle}, true)
	if next != Middle {
		t.Errorf("and(High,Middle) = %v, want Middle", next)
	}
}

func TestNandInvertsAnd(t *testing.T) {
	next, _, _ := EvaluateGate(GateNand, GateInputs{Front: High, Left: High}, true)
	if next != Low {
		t.Errorf("nand(High,High) = %v, want Low", next)
	}
	next, _, _ = EvaluateGate(GateNand, GateInputs{Front: Low, Left: Low}, true)
	if next != High {
		t.Errorf("nand(Low,Low) = %v, want High", next)
	}
}

func TestOrHighDominates(t *testing.T) {
	next, _, _ := EvaluateGate(GateOr, GateInputs{Front: High, Left: Low}, true)
	if next != High {
		t.Errorf("or(High,Low) = %v, want High", next)
	}
	next, _, _ = EvaluateGate(GateOr, GateInputs{Front: Middle, Left: Low}, true)
	if next != Middle {
		t.Errorf("or(Middle,Low) = %v, want Middle", next)
	}
	next, _, _ = EvaluateGate(GateOr, GateInputs{Front: Low, Left: Low}, true)
	if next != Low {
		t.Errorf("or(Low,Low) = %v, want Low", next)
	}
}

func TestXorParityWithoutMiddle(t *testing.T) {
	next, _, _ := EvaluateGate(GateXor, GateInputs{Front: High, Left: Low}, true)
	if next != High {
		t.Errorf("xor(High,Low) = %v, want High", next)
	}
	next, _, _ = EvaluateGate(GateXor, GateInputs{Front: High, Left: High}, true)
	if next != Low {
		t.Errorf("xor(High,High) = %v, want Low", next)
	}
	next, _, _ = EvaluateGate(GateXor, GateInputs{Front: High, Left: High, Right: High}, true)
	if next != High {
		t.Errorf("xor(High,High,High) = %v, want High (odd parity)", next)
	}
}

func TestXorAnyMiddleForcesMiddle(t *testing.T) {
	next, _, _ := EvaluateGate(GateXor, GateInputs{Front: High, Left: Middle}, true)
	if next != Middle {
		t.Errorf("xor(High,Middle) = %v, want Middle", next)
	}
}

func TestXnorInvertsXor(t *testing.T) {
	next, _, _ := EvaluateGate(GateXnor, GateInputs{Front: High, Left: High}, true)
	if next != High {
		t.Errorf("xnor(High,High) = %v, want High", next)
	}
}

func TestConnectorFlagsReflectWiredSides(t *testing.T) {
	_, left, right := EvaluateGate(GateAnd, GateInputs{Front: High, Left: High, Right: Low}, true)
	if !left || !right {
		t.Errorf("connectors = (%v, %v), want both true", left, right)
	}
	_, left, right = EvaluateGate(GateAnd, GateInputs{Front: High}, true)
	if left || right {
		t.Errorf("connectors = (%v, %v), want both false", left, right)
	}
}

func TestBufferConnectorsSuppressedWhenBothSidesWired(t *testing.T) {
	_, left, right := EvaluateGate(GateBuffer, GateInputs{Left: High, Right: Low}, true)
	if left || right {
		t.Errorf("buffer with both perpendicular sides wired: connectors = (%v, %v), want both false", left, right)
	}
}
