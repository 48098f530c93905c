package splitter

// Language identifies a syntax family with known block boundaries.
type Language string

const (
	LangCPP    Language = "cpp"
	LangGo     Language = "go"
	LangKotlin Language = "kotlin"
	LangJS     Language = "js"
	LangTS     Language = "ts"
	LangPHP    Language = "php"
	LangPython Language = "python"
	LangProto  Language = "proto"
	LangRST    Language = "rst"
	LangRuby   Language = "ruby"
	LangRust   Language = "rust"
	LangScala  Language = "scala"
	LangSwift  Language = "swift"
	LangHTML   Language = "html"
	LangLaTeX  Language = "latex"
	LangCSharp Language = "csharp"
	LangC      Language = "c"
	LangPerl   Language = "perl"
)

// extLanguage maps file extensions to languages. Files with extensions
// outside this table are split as prose. Notebooks flatten to Python.
var extLanguage = map[string]Language{
	".cpp":   LangCPP,
	".go":    LangGo,
	".kt":    LangKotlin,
	".js":    LangJS,
	".ts":    LangTS,
	".php":   LangPHP,
	".py":    LangPython,
	".ipynb": LangPython,
	".proto": LangProto,
	".rst":   LangRST,
	".rb":    LangRuby,
	".rs":    LangRust,
	".scala": LangScala,
	".swift": LangSwift,
	".html":  LangHTML,
	".tex":   LangLaTeX,
	".cs":    LangCSharp,
	".c":     LangC,
	".pl":    LangPerl,
}

// defaultSeparators is the prose fallback: paragraphs, lines, words, runes.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// languageSeparators prefers splitting at declaration/block boundaries so
// chunks start at functions and classes rather than mid-token.
var languageSeparators = map[Language][]string{
	LangCPP: {
		"\nclass ", "\nvoid ", "\nint ", "\nfloat ", "\ndouble ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	LangGo: {
		"\nfunc ", "\nvar ", "\nconst ", "\ntype ",
		"\nif ", "\nfor ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	LangKotlin: {
		"\nclass ", "\nfun ", "\nval ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nwhen ", "\ncase ", "\nelse ",
		"\n\n", "\n", " ", "",
	},
	LangJS: {
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ", "",
	},
	LangTS: {
		"\nenum ", "\ninterface ", "\nnamespace ", "\ntype ", "\nclass ",
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ", "",
	},
	LangPHP: {
		"\nfunction ", "\nclass ",
		"\nif ", "\nforeach ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	LangPython: {
		"\nclass ", "\ndef ", "\n\tdef ",
		"\n\n", "\n", " ", "",
	},
	LangProto: {
		"\nmessage ", "\nservice ", "\nenum ", "\noption ", "\nimport ", "\nsyntax ",
		"\n\n", "\n", " ", "",
	},
	LangRST: {
		"\n=+\n", "\n-+\n", "\n\\*+\n", "\n\n.. *\n\n",
		"\n\n", "\n", " ", "",
	},
	LangRuby: {
		"\ndef ", "\nclass ",
		"\nif ", "\nunless ", "\nwhile ", "\nfor ", "\ndo ", "\nbegin ", "\nrescue ",
		"\n\n", "\n", " ", "",
	},
	LangRust: {
		"\nfn ", "\nconst ", "\nlet ",
		"\nif ", "\nwhile ", "\nfor ", "\nloop ", "\nmatch ", "\nconst ",
		"\n\n", "\n", " ", "",
	},
	LangScala: {
		"\nclass ", "\nobject ", "\ndef ", "\nval ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nmatch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	LangSwift: {
		"\nfunc ", "\nclass ", "\nstruct ", "\nenum ",
		"\nif ", "\nfor ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	LangHTML: {
		"<body", "<div", "<p", "<br", "<li",
		"<h1", "<h2", "<h3", "<h4", "<h5", "<h6",
		"<span", "<table", "<tr", "<td", "<th",
		"<ul", "<ol", "<header", "<footer", "<nav",
		"<head", "<style", "<script", "<meta", "<title",
		"",
	},
	LangLaTeX: {
		"\n\\chapter{", "\n\\section{", "\n\\subsection{", "\n\\subsubsection{",
		"\n\\begin{enumerate}", "\n\\begin{itemize}", "\n\\begin{description}",
		"\n\\begin{list}", "\n\\begin{quote}", "\n\\begin{quotation}",
		"\n\\begin{verse}", "\n\\begin{verbatim}", "\n\\begin{align}",
		"\n\n", "\n", " ", "",
	},
	LangCSharp: {
		"\ninterface ", "\nenum ", "\nimplements ", "\ndelegate ", "\nevent ",
		"\nclass ", "\nabstract ",
		"\npublic ", "\nprotected ", "\nprivate ", "\nstatic ", "\nreturn ",
		"\nif ", "\ncontinue ", "\nfor ", "\nforeach ", "\nwhile ", "\nswitch ",
		"\nbreak ", "\ncase ", "\nelse ",
		"\n\n", "\n", " ", "",
	},
	LangC: {
		"\nstruct ", "\nunion ", "\nenum ", "\ntypedef ",
		"\nvoid ", "\nint ", "\nfloat ", "\ndouble ", "\nchar ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	LangPerl: {
		"\nsub ", "\npackage ",
		"\nif ", "\nunless ", "\nwhile ", "\nfor ", "\nforeach ",
		"\n\n", "\n", " ", "",
	},
}

// separatorsFor returns the split boundary list for an extension and
// whether the extension is a recognized source-code type.
func separatorsFor(ext string) ([]string, bool) {
	lang, ok := extLanguage[ext]
	if !ok {
		return defaultSeparators, false
	}
	seps, ok := languageSeparators[lang]
	if !ok {
		return defaultSeparators, false
	}
	return seps, true
}
