package sed_test

import (
	"testing"

	"github.com/rcarmo/hawksed/pkg/applets/sed"
	"github.com/rcarmo/hawksed/pkg/core"
	"github.com/rcarmo/hawksed/pkg/testutil"
)

func TestSed(t *testing.T) {
	tests := []testutil.AppletTestCase{
		{
			Name:     "substitute",
			Args:     []string{"s/foo/bar/", "input.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "bar\nbar\n",
			Files: map[string]string{
				"input.txt": "foo\nfoo\n",
			},
		},
		{
			Name:     "print_only",
			Args:     []string{"-n", "p", "input.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "foo\n",
			Files: map[string]string{
				"input.txt": "foo\n",
			},
		},
		{
			Name:     "delete",
			Args:     []string{"d", "input.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "",
			Files: map[string]string{
				"input.txt": "foo\n",
			},
		},
		{
			Name:     "append",
			Args:     []string{"a bar", "input.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "foo\nbar\n",
			Files: map[string]string{
				"input.txt": "foo\n",
			},
		},
		{
			Name:     "insert",
			Args:     []string{"i bar", "input.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "bar\nfoo\n",
			Files: map[string]string{
				"input.txt": "foo\n",
			},
		},
		{
			Name:     "change",
			Args:     []string{"c bar", "input.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "bar\n",
			Files: map[string]string{
				"input.txt": "foo\n",
			},
		},
		{
			// Two -e elements must compile as two separate commands, not as
			// one string formed by gluing them together: "s/foo/bar/d"
			// would fail to compile ('d' is not a valid 's' flag), so a
			// successful run here demonstrates the squeezed-newline join
			// between script elements.
			Name:     "multiple_e_elements_are_separate_commands",
			Args:     []string{"-e", "s/foo/bar/", "-e", "d", "input.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "",
			Files: map[string]string{
				"input.txt": "foo\n",
			},
		},
	}

	testutil.RunAppletTests(t, sed.Run, tests)
}
