package dashschema_test

import (
	"errors"
	"testing"

	"github.com/reoring/dashschema"
)

func TestJSONDrivers_AgreeOnTree(t *testing.T) {
	doc := []byte(`{"title":"G","type":"object","properties":{"b":{"type":"string"},"a":{"type":"array","items":{"type":"number"}}}}`)

	for _, d := range []dashschema.JSONDriver{dashschema.CurrentJSONDriver(), dashschema.StdlibJSONDriver()} {
		root, _, err := dashschema.Decode(d.NewBytes(doc), dashschema.LoadOptions{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", d.Name(), err)
		}
		if got := propertyNames(root); len(got) != 2 || got[0] != "b" || got[1] != "a" {
			t.Fatalf("%s: properties = %v", d.Name(), got)
		}
		if root.Properties[1].Node.Items == nil {
			t.Fatalf("%s: items missing", d.Name())
		}
	}
}

func TestSetJSONDriver(t *testing.T) {
	t.Cleanup(dashschema.UseDefaultJSONDriver)

	dashschema.SetJSONDriver(nil)
	if got := dashschema.CurrentJSONDriver().Name(); got != "go-json" {
		t.Fatalf("nil driver must be ignored, got %q", got)
	}

	dashschema.SetJSONDriver(dashschema.StdlibJSONDriver())
	if got := dashschema.CurrentJSONDriver().Name(); got != "encoding/json" {
		t.Fatalf("driver = %q", got)
	}
	_, _, err := dashschema.LoadJSON([]byte(`{"type":`))
	if !errors.Is(err, dashschema.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}
