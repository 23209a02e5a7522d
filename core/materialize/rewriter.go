package materialize

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/scanner"
)

const (
	quote = "['\"`]"
	body  = "[^'\"`\\s]"
)

type rewriteRule struct {
	name        string
	re          *regexp.Regexp
	replacement string
}

// Rewriter points references at <componentsDir>/<name> to the flattened <name>.
type Rewriter struct {
	rules []rewriteRule
}

// NewRewriter builds the rules for every flattened component name. appDir is
// the last segment of the app root ("app"); aliases are root-scope prefixes
// such as "@app" and "src/app".
func NewRewriter(names []string, appDir, componentsDir string, aliases []string) *Rewriter {
	r := &Rewriter{}
	comp := regexp.QuoteMeta(componentsDir)
	app := regexp.QuoteMeta(appDir)

	quotedAliases := make([]string, 0, len(aliases))
	for _, a := range aliases {
		quotedAliases = append(quotedAliases, regexp.QuoteMeta(strings.TrimSuffix(a, "/")))
	}

	for _, name := range names {
		n := regexp.QuoteMeta(name)
		tail := "((?:/" + body + "*)?)(" + quote + ")"

		if len(quotedAliases) > 0 {
			r.rules = append(r.rules, rewriteRule{
				name:        "root-scope",
				re:          regexp.MustCompile("(" + quote + ")(" + strings.Join(quotedAliases, "|") + ")/" + comp + "/" + n + tail),
				replacement: "${1}${2}/" + name + "${3}${4}",
			})
		}
		r.rules = append(r.rules,
			rewriteRule{
				name:        "bare",
				re:          regexp.MustCompile("(" + quote + ")((?:" + body + "*/)?)" + app + "/" + comp + "/" + n + tail),
				replacement: "${1}${2}" + appDir + "/" + name + "${3}${4}",
			},
			rewriteRule{
				name:        "same-level",
				re:          regexp.MustCompile("(" + quote + `)\./` + comp + "/" + n + tail),
				replacement: "${1}./" + name + "${2}${3}",
			},
			rewriteRule{
				name:        "parent-level",
				re:          regexp.MustCompile("(" + quote + `)((?:\.\./)+)` + comp + "/" + n + tail),
				replacement: "${1}${2}" + name + "${3}${4}",
			},
		)
	}
	return r
}

// RewriteContent applies every rule. Content without a match is returned unchanged,
// and a second pass over the result changes nothing.
func (r *Rewriter) RewriteContent(content []byte) []byte {
	out := content
	for _, rule := range r.rules {
		out = rule.re.ReplaceAll(out, []byte(rule.replacement))
	}
	return out
}

// RewriteTree rewrites every matching file under root, skipping node_modules
// and hidden directories. Files are only written when their content changes.
func (r *Rewriter) RewriteTree(root string, extensions []string) (int, error) {
	updated := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !scanner.HasExtension(p, extensions) {
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		rewritten := r.RewriteContent(content)
		if string(rewritten) == string(content) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, rewritten, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
		logger.Debug("Rewrote references in %s", p)
		updated++
		return nil
	})
	if err != nil {
		return updated, fmt.Errorf("failed to rewrite references under %s: %w", root, err)
	}
	return updated, nil
}
