package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocIsRegistered(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}

	var doc struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	if doc.Swagger != "2.0" {
		t.Fatalf("unexpected swagger version %q", doc.Swagger)
	}
	for path, method := range map[string]string{
		"/auth/login":                              "post",
		"/api/tasks":                               "post",
		"/api/tasks/{id}":                          "put",
		"/api/tasks/{id}/observe":                  "post",
		"/api/tasks/{id}/addObserver/{observerId}": "post",
		"/api/users/{id}":                          "delete",
	} {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Fatalf("missing %s %s", method, path)
		}
	}
}
