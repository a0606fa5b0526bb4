package detection

import (
	"regexp"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
)

// Signature is one compiled rule of the signature database.
type Signature struct {
	Category security.Category
	Pattern  *regexp.Regexp
}

func (s Signature) String() string {
	return s.Pattern.String()
}

var defaultSignatures = map[security.Category][]string{
	security.CategoryInjectionSQL: {
		`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|EXEC|EXECUTE|UNION|SCRIPT)\b`,
		`(?i)('|(\\')|(;)|(--)|(/\*)|(\*/)|(\+)|(%27)|(%22))`,
		`(?i)(\bOR\b.*=.*)|(\bAND\b.*=.*)`,
		`(?i)(\bUNION\b.*\bSELECT\b)`,
		`(?i)(\bEXEC\b|\bEXECUTE\b)`,
	},
	security.CategoryXSS: {
		`(?i)<script[^>]*>.*?</script>`,
		`(?i)javascript:`,
		`(?i)on\w+\s*=`,
		`(?i)<iframe`,
		`(?i)<object`,
		`(?i)<embed`,
		`(?i)<img[^>]+src[^>]*=.*javascript:`,
		`(?i)eval\(`,
		`(?i)expression\(`,
	},
	security.CategoryPathTraversal: {
		`\.\./`,
		`\.\.\\`,
		`(?i)\.\.%2F`,
		`(?i)\.\.%5C`,
		`(?i)etc/passwd`,
		`(?i)boot\.ini`,
		`(?i)windows/system32`,
	},
	security.CategoryCommandInjection: {
		"[;&|`$(){}\\[\\]]",
		`(?i)\b(cat|ls|pwd|whoami|id|uname|ps|kill|rm|mv|cp|chmod|chown)\b`,
		`\|\s*\w+`,
		`;\s*\w+`,
		`\$\{`,
		`\$\(`,
	},
	security.CategoryNoSQLOperator: {
		`(?i)\$where`,
		`(?i)\$ne`,
		`(?i)\$gt`,
		`(?i)\$lt`,
		`(?i)\$regex`,
		`(?i)\$exists`,
		`(?i)\$in`,
		`(?i)\$nin`,
	},
}

// SignatureDatabase is the immutable rule table the detector scans with.
// Rules are kept in category order, then in declaration order.
type SignatureDatabase struct {
	signatures []Signature
}

// NewSignatureDatabase compiles the built-in rule table.
func NewSignatureDatabase() *SignatureDatabase {
	db, err := CompileSignatures(defaultSignatures)
	if err != nil {
		panic(err)
	}
	return db
}

// CompileSignatures builds a database from raw expressions grouped by
// category. Categories outside security.Categories are ignored.
func CompileSignatures(table map[security.Category][]string) (*SignatureDatabase, error) {
	db := &SignatureDatabase{}
	for _, category := range security.Categories {
		for _, expr := range table[category] {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, &InvalidSignatureError{Category: category, Expr: expr, Err: err}
			}
			db.signatures = append(db.signatures, Signature{Category: category, Pattern: re})
		}
	}
	return db, nil
}

func (db *SignatureDatabase) Signatures() []Signature {
	out := make([]Signature, len(db.signatures))
	copy(out, db.signatures)
	return out
}

func (db *SignatureDatabase) ByCategory(category security.Category) []Signature {
	var out []Signature
	for _, s := range db.signatures {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func (db *SignatureDatabase) Len() int {
	return len(db.signatures)
}

type InvalidSignatureError struct {
	Category security.Category
	Expr     string
	Err      error
}

func (e *InvalidSignatureError) Error() string {
	return "invalid signature for " + string(e.Category) + " (" + e.Expr + "): " + e.Err.Error()
}

func (e *InvalidSignatureError) Unwrap() error {
	return e.Err
}
