package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixtureCompound is one index entry and, when body is set, its backing document.
type fixtureCompound struct {
	refid string
	kind  string
	body  string
}

// writeCorpus lays out a Doxygen XML directory and returns its path.
func writeCorpus(t *testing.T, compounds ...fixtureCompound) string {
	t.Helper()
	dir := t.TempDir()

	var index strings.Builder
	index.WriteString("<?xml version='1.0' encoding='UTF-8' standalone='no'?>\n<doxygenindex version=\"1.9.8\">\n")
	for _, c := range compounds {
		fmt.Fprintf(&index, "  <compound refid=%q kind=%q><name>%s</name></compound>\n", c.refid, c.kind, c.refid)
		if c.body != "" {
			require.NoError(t, os.WriteFile(filepath.Join(dir, c.refid+".xml"), []byte(c.body), 0o644))
		}
	}
	index.WriteString("</doxygenindex>\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.xml"), []byte(index.String()), 0o644))
	return dir
}

// compoundDoc wraps members in a compounddef envelope.
func compoundDoc(members ...string) string {
	return "<?xml version='1.0' encoding='UTF-8' standalone='no'?>\n<doxygen>\n  <compounddef kind=\"file\">\n    <sectiondef>\n" +
		strings.Join(members, "\n") +
		"\n    </sectiondef>\n  </compounddef>\n</doxygen>\n"
}

// member renders one memberdef with a location on file.
func member(name string, documented bool, file string) string {
	brief := "<briefdescription></briefdescription>"
	if documented {
		brief = "<briefdescription><para>Doc.</para></briefdescription>"
	}
	return fmt.Sprintf(`<memberdef kind="function" id="%s_id" static="no"><name>%s</name>%s<location file=%q/></memberdef>`, name, name, brief, file)
}

// staticMember renders a static function, which is never documentable.
func staticMember(name string, file string) string {
	return fmt.Sprintf(`<memberdef kind="function" id="%s_id" static="yes"><name>%s</name><location file=%q/></memberdef>`, name, name, file)
}

// membersFor returns yes documented and no undocumented members on file.
func membersFor(file, prefix string, yes, no int) []string {
	var out []string
	for i := range yes {
		out = append(out, member(fmt.Sprintf("%s_doc%d", prefix, i), true, file))
	}
	for i := range no {
		out = append(out, member(fmt.Sprintf("%s_undoc%d", prefix, i), false, file))
	}
	return out
}
