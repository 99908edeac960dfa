package utils

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMeanAndVariance(t *testing.T) {
	mean, variance := MeanAndVariance([]int{2, 4, 4, 4, 5, 5, 7, 9}, false)
	if mean != 5 || variance != 4 {
		t.Errorf("want 5 and 4, got %v and %v", mean, variance)
	}
	if v := Variance([]float64{1, 3}, true); v != 2 {
		t.Errorf("want unbiased variance 2, got %v", v)
	}
	if s := SumSlice([]int{1, 2, 3}); s != 6 {
		t.Errorf("want 6, got %v", s)
	}
	if v := Variance([]float64{3}, true); v != 0 {
		t.Errorf("want zero variance of a single value, got %v", v)
	}
	if m := Average([]int{}); !math.IsNaN(m) {
		t.Errorf("want NaN mean of nothing, got %v", m)
	}
}

func TestMeanAndHalfWidth95(t *testing.T) {
	mean, halfWidth := MeanAndHalfWidth95([]float64{0, 8})
	if want := 1.96 * math.Sqrt(32./2); mean != 4 || math.Abs(halfWidth-want) > 1e-12 {
		t.Errorf("want 4 +- %v, got %v +- %v", want, mean, halfWidth)
	}
	if mean, halfWidth := MeanAndHalfWidth95([]int{7}); mean != 7 || halfWidth != 0 {
		t.Errorf("want 7 +- 0, got %v +- %v", mean, halfWidth)
	}
}

func TestNaturalOrder(t *testing.T) {
	data := CSV{{"enr_l10"}, {"enr_l2"}, {"enr_l1"}}
	data.Sort()
	got := []string{data[0][0], data[1][0], data[2][0]}
	want := []string{"enr_l1", "enr_l2", "enr_l10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestReadFloatRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "densities.txt")
	os.WriteFile(path, []byte("# fissile fertile\n0.007 0.993\n\n0.03 0.97\n"), 0640)
	rows, err := ReadFloatRows(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != 0.03 || rows[1][1] != 0.97 {
		t.Errorf("unexpected rows %v", rows)
	}

	cases := map[string]string{
		"three columns": "0.007 0.993\n0.007 0.993 1\n",
		"not a number":  "0.007 x\n",
	}
	for name, content := range cases {
		os.WriteFile(path, []byte(content), 0640)
		if _, err := ReadFloatRows(path, 2); err == nil {
			t.Errorf("%s: want error", name)
		}
	}
	os.WriteFile(path, []byte("0.007 0.993 1\n"), 0640)
	if _, err := ReadFloatRows(path, 2); err == nil || !strings.Contains(err.Error(), ":1:") {
		t.Errorf("want error naming line 1, got %v", err)
	}
}

func TestWriteAsCSV(t *testing.T) {
	dir := t.TempDir() + "/"
	err := WriteAsCSV(CSV{{"b", "2"}, {"a", "1"}}, dir, "summary", "study.toml", []string{"model", "k"})
	if err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(dir + "summary/study.txt")
	if err != nil {
		t.Fatal(err)
	}
	if want := "model,k\na,1\nb,2\n"; string(content) != want {
		t.Errorf("want %q, got %q", want, string(content))
	}
	if GetFilename("/x/y/study.toml") != "study" {
		t.Errorf("want study, got %s", GetFilename("/x/y/study.toml"))
	}
	if !strings.HasSuffix(dir, "/") {
		t.Fatal("temp dir must end with a separator")
	}
}
