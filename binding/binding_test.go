package binding

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/duizhao/errs"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("解析 JSON 失败: %v", err)
	}
	return v
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"sutra":{"zh":"金剛經","en":"Diamond Sutra"},"juan":[1,2]}`)
	got, err := InterpolateAll([]string{
		"《${sutra.zh}》卷${juan.1}",
		"The ${ sutra.en }",
		"plain text",
	}, data)
	if err != nil {
		t.Fatalf("代入失败: %v", err)
	}
	want := []string{"《金剛經》卷2", "The Diamond Sutra", "plain text"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("结果不符 (-want +got):\n%s", diff)
	}
}

func TestInterpolateMissingIsConfigError(t *testing.T) {
	data := decode(t, `{"a":1}`)
	_, err := Interpolate("x ${b} ${a.c}", data)
	if !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("期望配置错误，实际 %v", err)
	}
}

func TestInterpolateNilData(t *testing.T) {
	got, err := Interpolate("${keep}", nil)
	if err != nil || got != "${keep}" {
		t.Fatalf("没有数据时应原样返回，实际 %q, %v", got, err)
	}
}
