package resolve

import (
	"testing"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/stretchr/testify/assert"
)

func TestResolve_RelativeSpecifier(t *testing.T) {
	r := New([]string{"src/ui/Button.tsx", "src/ui/index.ts"}, nil)
	res := r.Resolve("src/app.ts", "./ui/Button")
	assert.Equal(t, "src/ui/Button.tsx", res.Target)
	assert.False(t, res.Unresolved)
}

func TestResolve_BarePackageIsExternal(t *testing.T) {
	r := New([]string{"src/app.ts"}, nil)
	res := r.Resolve("src/app.ts", "react")
	assert.True(t, res.External)
	assert.Equal(t, "external:react", res.Target)
}

func TestResolve_DirectoryBarrel(t *testing.T) {
	r := New([]string{"src/ui/index.ts", "src/ui/Button.tsx"}, nil)
	res := r.Resolve("src/app.ts", "./ui")
	assert.Equal(t, "src/ui/index.ts", res.Target)
}

func TestResolve_AliasPrefix(t *testing.T) {
	r := New([]string{"src/lib/fmt.ts"}, map[string]string{"@lib": "src/lib"})
	res := r.Resolve("src/app.ts", "@lib/fmt")
	assert.Equal(t, "src/lib/fmt.ts", res.Target)
}

func TestResolve_Unresolved(t *testing.T) {
	r := New([]string{"src/app.ts"}, nil)
	res := r.Resolve("src/app.ts", "./missing")
	assert.True(t, res.Unresolved)
	assert.Equal(t, "not_found", res.Reason)
}

func TestFollowReexports_TerminatesOnCycle(t *testing.T) {
	lookup := func(file string) []coretypes.Export {
		switch file {
		case "a.ts":
			return []coretypes.Export{{Name: "X", IsReexport: true, ReexportOf: "b.ts"}}
		case "b.ts":
			return []coretypes.Export{{Name: "X", IsReexport: true, ReexportOf: "a.ts"}}
		}
		return nil
	}
	target := FollowReexports("a.ts", "X", lookup)
	assert.True(t, target.Cyclic)
	assert.True(t, target.Unresolved)
}

func TestFollowReexports_ResolvesToOwner(t *testing.T) {
	lookup := func(file string) []coretypes.Export {
		switch file {
		case "barrel.ts":
			return []coretypes.Export{{Name: "Button", IsReexport: true, ReexportOf: "Button.tsx"}}
		case "Button.tsx":
			return []coretypes.Export{{Name: "Button", Kind: coretypes.ExportFunction}}
		}
		return nil
	}
	target := FollowReexports("barrel.ts", "Button", lookup)
	assert.False(t, target.Unresolved)
	assert.Equal(t, "Button.tsx", target.File)
}
