package mcpservice

import "testing"

func TestRenderTemplate(t *testing.T) {
	const greet = "Hello {name}{?greeting? and {greeting}}!"

	cases := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{"conditional absent", greet, map[string]string{"name": "Ann"}, "Hello Ann!"},
		{"conditional present", greet, map[string]string{"name": "Ann", "greeting": "welcome"}, "Hello Ann and welcome!"},
		{"plain", "{a}-{b}", map[string]string{"a": "1", "b": "2"}, "1-2"},
		{"unknown placeholder kept", "hi {who}", nil, "hi {who}"},
		{"value not rescanned", "{a}", map[string]string{"a": "{b}", "b": "x"}, "{b}"},
		{"nested blocks", "{?a?A{?b?B{b}}}.", map[string]string{"a": "", "b": "1"}, "AB1."},
		{"nested outer absent", "{?a?A{?b?B}}.", map[string]string{"b": "1"}, "."},
		{"balanced braces in body", "{?a?{x}{y}}", map[string]string{"a": "", "x": "1", "y": "2"}, "12"},
		{"unterminated block", "x {?a?oops", map[string]string{"a": "1"}, "x {?a?oops"},
		{"block without name terminator", "x {?abc", nil, "x {?abc"},
		{"lone brace", "a { b", map[string]string{"b": "1"}, "a { b"},
		{"empty", "", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderTemplate(tc.tmpl, tc.vars); got != tc.want {
				t.Fatalf("RenderTemplate(%q) = %q, want %q", tc.tmpl, got, tc.want)
			}
		})
	}
}
