package fileid

import "testing"

func TestDocID_Stable(t *testing.T) {
	a := DocID("/corpus/report.pdf")
	b := DocID("/corpus/report.pdf")
	if a != b {
		t.Errorf("same path produced different IDs: %q vs %q", a, b)
	}
}

func TestDocID_CleansPath(t *testing.T) {
	a := DocID("/corpus/report.pdf")
	b := DocID("/corpus/./report.pdf")
	if a != b {
		t.Errorf("equivalent paths produced different IDs: %q vs %q", a, b)
	}
}

func TestDocID_DistinctPaths(t *testing.T) {
	if DocID("/corpus/a.pdf") == DocID("/corpus/b.pdf") {
		t.Error("different paths produced the same ID")
	}
}
