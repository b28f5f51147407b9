package lang

import (
	"regexp"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

func sig(pattern string, weight float64) ContentSignature {
	return ContentSignature{Pattern: regexp.MustCompile(pattern), Weight: weight}
}

func rule(name, pattern string, weight float64) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern), Weight: weight}
}

// Shared keyword sets per family. Keyword density is one of the structural
// signals fed to the confidence scorer.
var (
	cLikeKeywords = keywordSet(
		"if", "else", "for", "while", "return", "switch", "case", "break",
		"continue", "void", "int", "char", "float", "double", "struct",
		"class", "public", "private", "static", "const", "new", "function",
		"var", "let", "import", "export", "async", "await", "try", "catch",
		"interface", "enum", "extends", "implements",
	)
	pythonKeywords = keywordSet(
		"def", "class", "import", "from", "return", "if", "elif", "else",
		"for", "while", "try", "except", "finally", "with", "lambda",
		"yield", "pass", "raise", "self", "none", "true", "false", "async",
		"await",
	)
	shellKeywords = keywordSet(
		"echo", "export", "if", "then", "else", "elif", "fi", "for", "do",
		"done", "while", "case", "esac", "function", "local", "exit",
		"return", "source", "set",
	)
	sqlKeywords = keywordSet(
		"select", "from", "where", "insert", "into", "values", "update",
		"delete", "create", "table", "index", "join", "left", "inner",
		"group", "order", "by", "having", "limit", "alter", "drop",
	)
	rubyKeywords = keywordSet(
		"def", "end", "class", "module", "require", "if", "elsif", "else",
		"unless", "do", "puts", "nil", "true", "false", "attr_accessor",
		"yield", "begin", "rescue",
	)
	rustKeywords = keywordSet(
		"fn", "let", "mut", "impl", "struct", "enum", "trait", "pub", "use",
		"mod", "match", "if", "else", "for", "while", "loop", "return",
		"self", "crate",
	)
	goKeywords = keywordSet(
		"func", "package", "import", "type", "struct", "interface", "var",
		"const", "return", "if", "else", "for", "range", "go", "chan",
		"select", "defer", "map", "nil", "err",
	)
)

// Family rulesets. Rules are declarative pattern+weight data; new languages
// reuse a family ruleset or add their own entry, never new control flow.
var (
	cLikeRuleset = &Ruleset{
		Family: FamilyCLike,
		Rules: []Rule{
			rule("function", `\b(?:function|void|int|static|public|private)\b[^\n]*\(`, 0.30),
			rule("control-flow", `\b(?:if|for|while|switch)\s*\(`, 0.25),
			rule("declaration", `\b(?:class|struct|interface|enum)\s+\w+`, 0.25),
			rule("assignment", `\b(?:var|let|const)\s+\w+\s*=`, 0.20),
			rule("braces", `\{[^}]*\}`, 0.10),
		},
		Keywords:   cLikeKeywords,
		Terminator: regexp.MustCompile(`[;{}]\s*$`),
	}

	pythonRuleset = &Ruleset{
		Family: FamilyPythonLike,
		Rules: []Rule{
			rule("def", `(?m)^\s*def\s+\w+\s*\(`, 0.35),
			rule("class", `(?m)^\s*class\s+\w+`, 0.25),
			rule("import", `(?m)^\s*(?:import|from)\s+\w+`, 0.25),
			rule("control-flow", `(?m)^\s*(?:if|elif|for|while|with|try)\b[^\n]*:`, 0.25),
			rule("decorator", `(?m)^\s*@\w+`, 0.10),
		},
		Keywords:   pythonKeywords,
		Terminator: regexp.MustCompile(`:\s*$`),
	}

	shellRuleset = &Ruleset{
		Family: FamilyShell,
		Rules: []Rule{
			rule("shebang", `(?m)^#!\s*/`, 0.40),
			rule("variable", `\$\{?\w+`, 0.25),
			rule("block-end", `\b(?:fi|done|esac)\b`, 0.25),
			rule("pipe", `\|\s*\w+`, 0.15),
			rule("command", `(?m)^\s*(?:echo|export|cd|mkdir|curl|grep|sed|awk)\b`, 0.20),
		},
		Keywords: shellKeywords,
	}

	sqlRuleset = &Ruleset{
		Family: FamilySQL,
		Rules: []Rule{
			rule("select", `(?im)^\s*select\b[\s\S]*?\bfrom\b`, 0.40),
			rule("dml", `(?im)^\s*(?:insert\s+into|update|delete\s+from)\b`, 0.35),
			rule("ddl", `(?im)^\s*(?:create|alter|drop)\s+(?:table|index|view|database)\b`, 0.35),
			rule("clause", `(?im)\b(?:where|group\s+by|order\s+by|join)\b`, 0.15),
		},
		Keywords:   sqlKeywords,
		Terminator: regexp.MustCompile(`;\s*$`),
	}

	markupRuleset = &Ruleset{
		Family: FamilyMarkup,
		Rules: []Rule{
			rule("tag-pair", `<(\w+)[^>]*>[\s\S]*?</\w+>`, 0.40),
			rule("self-closing", `<\w+[^>]*/>`, 0.20),
			rule("doctype", `(?i)<!doctype\s+html`, 0.30),
			rule("attribute", `\w+\s*=\s*"[^"]*"`, 0.15),
		},
	}

	cssRuleset = &Ruleset{
		Family: FamilyMarkup,
		Rules: []Rule{
			rule("rule-block", `[.#]?[\w-]+\s*\{[^}]*:[^}]*\}`, 0.45),
			rule("property", `(?m)^\s*[\w-]+\s*:\s*[^;]+;`, 0.30),
			rule("at-rule", `(?m)^\s*@(?:media|import|keyframes)\b`, 0.20),
		},
		Terminator: regexp.MustCompile(`[;}]\s*$`),
	}

	markdownRuleset = &Ruleset{
		Family: FamilyMarkup,
		Rules: []Rule{
			rule("heading", `(?m)^#{1,6}\s+\S`, 0.35),
			rule("list", `(?m)^\s*[-*+]\s+\S`, 0.20),
			rule("link", `\[[^\]]+\]\([^)]+\)`, 0.25),
			rule("fence", "(?m)^```", 0.25),
		},
	}

	// Network/device configuration patterns, kept from the production rule
	// tables: two independent pattern families must corroborate before a
	// config ruleset claims a region.
	ciscoRuleset = &Ruleset{
		Family: FamilyConfig,
		Rules: []Rule{
			rule("access-list", `(?im)access-list\s+\d+\s+(?:permit|deny)`, 0.30),
			rule("vlan", `(?im)^vlan\s+\d+`, 0.25),
			rule("interface", `(?im)^interface\s+\w+`, 0.25),
			rule("router", `(?im)^router\s+(?:bgp|ospf|eigrp)`, 0.30),
			rule("ipv4", `\b(?:\d{1,3}\.){3}\d{1,3}\b`, 0.15),
		},
		MinMatches: 2,
	}

	nginxRuleset = &Ruleset{
		Family: FamilyConfig,
		Rules: []Rule{
			rule("server-block", `(?m)server\s*\{`, 0.30),
			rule("location", `(?m)location\s+[~*^]*\s*[\w/]+\s*\{`, 0.30),
			rule("listen", `(?m)listen\s+\d+`, 0.25),
			rule("proxy", `(?m)proxy_pass\s+https?://`, 0.25),
		},
		Terminator: regexp.MustCompile(`[;{}]\s*$`),
		MinMatches: 2,
	}

	logRuleset = &Ruleset{
		Family: FamilyLog,
		Rules: []Rule{
			rule("timestamp", `\d{4}-\d{2}-\d{2}[T\s]\d{2}:\d{2}:\d{2}`, 0.40),
			rule("severity", `\b(?:DEBUG|INFO|WARN|WARNING|ERROR|ERR|CRITICAL|FATAL)\b`, 0.35),
			rule("ip-address", `\b(?:\d{1,3}\.){3}\d{1,3}\b`, 0.15),
		},
		MinMatches: 2,
	}

	dataRuleset = &Ruleset{
		Family: FamilyData,
		Rules: []Rule{
			rule("key-value", `(?m)^\s*"?[\w-]+"?\s*:\s*\S`, 0.35),
			rule("object", `\{[\s\S]*\}`, 0.20),
			rule("array", `\[[\s\S]*\]`, 0.15),
		},
	}

	unknownRuleset = &Ruleset{
		Family: FamilyUnknown,
		// No rules: the unknown profile claims nothing on its own and is
		// assigned only as the last-resort coverage label.
		Rules:      nil,
		MinMatches: 1,
	}
)

// builtinProfiles returns the closed set of built-in language profiles.
func builtinProfiles() []*Profile {
	tsLang := sitter.NewLanguage(typescript.LanguageTypescript())

	return []*Profile{
		{
			ID:          "python",
			DisplayName: "Python",
			Family:      FamilyPythonLike,
			Extensions:  []string{".py", ".pyw"},
			Shebangs:    []string{"python", "python2", "python3"},
			Signatures: []ContentSignature{
				sig(`(?m)^\s*def\s+\w+\s*\(.*\)\s*:`, 0.40),
				sig(`(?m)^\s*(?:import|from)\s+[\w.]+`, 0.25),
				sig(`(?m)^\s*class\s+\w+(?:\(.*\))?\s*:`, 0.25),
				sig(`\bself\b`, 0.15),
			},
			Grammar:  newTreeSitterGrammar(sitter.NewLanguage(python.Language()), "python"),
			Fallback: pythonRuleset,
		},
		{
			ID:          "javascript",
			DisplayName: "JavaScript",
			Family:      FamilyCLike,
			Extensions:  []string{".js", ".jsx", ".mjs", ".cjs"},
			Shebangs:    []string{"node"},
			Signatures: []ContentSignature{
				sig(`\b(?:const|let|var)\s+\w+\s*=`, 0.25),
				sig(`=>\s*[{(]?`, 0.25),
				sig(`\bfunction\s+\w*\s*\(`, 0.25),
				sig(`\bconsole\.log\(`, 0.20),
				sig(`\brequire\(['"]`, 0.15),
			},
			// The TypeScript grammar parses JavaScript as a strict subset.
			Grammar:  newTreeSitterGrammar(tsLang, "javascript"),
			Fallback: cLikeRuleset,
		},
		{
			ID:          "typescript",
			DisplayName: "TypeScript",
			Family:      FamilyCLike,
			Extensions:  []string{".ts", ".mts", ".cts"},
			Signatures: []ContentSignature{
				sig(`:\s*(?:string|number|boolean|void|any)\b`, 0.35),
				sig(`\binterface\s+\w+\s*\{`, 0.30),
				sig(`\b(?:const|let)\s+\w+\s*(?::|=)`, 0.20),
				sig(`\bexport\s+(?:default\s+)?(?:class|function|const|interface)\b`, 0.20),
			},
			Grammar:  newTreeSitterGrammar(tsLang, "typescript"),
			Fallback: cLikeRuleset,
		},
		{
			ID:          "tsx",
			DisplayName: "TSX",
			Family:      FamilyCLike,
			Extensions:  []string{".tsx"},
			Signatures: []ContentSignature{
				sig(`<[A-Z]\w*(?:\s+\w+={[^}]*})*\s*/?>`, 0.45),
				sig(`\bexport\s+(?:default\s+)?function\s+[A-Z]\w*`, 0.30),
			},
			Grammar:  newTreeSitterGrammar(sitter.NewLanguage(typescript.LanguageTSX()), "tsx"),
			Fallback: cLikeRuleset,
		},
		{
			ID:          "c",
			DisplayName: "C",
			Family:      FamilyCLike,
			Extensions:  []string{".c", ".h"},
			Signatures: []ContentSignature{
				sig(`(?m)^\s*#include\s*[<"]`, 0.40),
				sig(`\bint\s+main\s*\(`, 0.30),
				sig(`\b(?:printf|malloc|sizeof)\s*\(`, 0.20),
				sig(`\bstruct\s+\w+\s*\{`, 0.15),
			},
			Grammar:  newTreeSitterGrammar(sitter.NewLanguage(c.Language()), "c"),
			Fallback: cLikeRuleset,
		},
		{
			ID:          "java",
			DisplayName: "Java",
			Family:      FamilyCLike,
			Extensions:  []string{".java"},
			Signatures: []ContentSignature{
				sig(`\bpublic\s+(?:static\s+)?(?:final\s+)?(?:class|interface|void|int|String)\b`, 0.35),
				sig(`\bSystem\.out\.print`, 0.30),
				sig(`(?m)^\s*package\s+[\w.]+;`, 0.25),
				sig(`(?m)^\s*import\s+java\.`, 0.25),
			},
			Grammar:  newTreeSitterGrammar(sitter.NewLanguage(java.Language()), "java"),
			Fallback: cLikeRuleset,
		},
		{
			ID:          "php",
			DisplayName: "PHP",
			Family:      FamilyCLike,
			Extensions:  []string{".php"},
			Shebangs:    []string{"php"},
			Signatures: []ContentSignature{
				sig(`<\?php`, 0.50),
				sig(`\$\w+\s*=`, 0.25),
				sig(`\becho\s+['"$]`, 0.15),
				sig(`->\w+\(`, 0.15),
			},
			Grammar:  newTreeSitterGrammar(sitter.NewLanguage(php.LanguagePHP()), "php"),
			Fallback: cLikeRuleset,
		},
		{
			ID:          "ruby",
			DisplayName: "Ruby",
			Family:      FamilyPythonLike,
			Extensions:  []string{".rb", ".rake"},
			Filenames:   []string{"Rakefile", "Gemfile"},
			Shebangs:    []string{"ruby"},
			Signatures: []ContentSignature{
				sig(`(?m)^\s*def\s+\w+[\s\S]*?^\s*end\b`, 0.40),
				sig(`(?m)^\s*require\s+['"]`, 0.25),
				sig(`\bputs\s+['"]?`, 0.15),
				sig(`(?m)^\s*(?:class|module)\s+[A-Z]\w*`, 0.25),
			},
			Grammar:  newTreeSitterGrammar(sitter.NewLanguage(ruby.Language()), "ruby"),
			Fallback: pythonRuleset,
		},
		{
			ID:          "rust",
			DisplayName: "Rust",
			Family:      FamilyCLike,
			Extensions:  []string{".rs"},
			Signatures: []ContentSignature{
				sig(`\bfn\s+\w+\s*(?:<[^>]*>)?\s*\(`, 0.35),
				sig(`\blet\s+(?:mut\s+)?\w+`, 0.25),
				sig(`\b(?:impl|trait|pub)\b`, 0.20),
				sig(`\w+::\w+`, 0.20),
			},
			Grammar:  newTreeSitterGrammar(sitter.NewLanguage(rust.Language()), "rust"),
			Fallback: cLikeRuleset,
		},
		{
			ID:          "go",
			DisplayName: "Go",
			Family:      FamilyCLike,
			Extensions:  []string{".go"},
			Signatures: []ContentSignature{
				sig(`(?m)^\s*func\s+(?:\(\w+\s+\*?\w+\)\s+)?\w+\s*\(`, 0.35),
				sig(`(?m)^package\s+\w+`, 0.30),
				sig(`:=`, 0.20),
				sig(`\bif\s+err\s*!?=`, 0.20),
			},
			Fallback: &Ruleset{
				Family: FamilyCLike,
				Rules: []Rule{
					rule("func", `(?m)^\s*func\s+\w+\s*\(`, 0.35),
					rule("package", `(?m)^package\s+\w+`, 0.30),
					rule("short-assign", `:=`, 0.20),
					rule("err-check", `\bif\s+err\s*!?=`, 0.20),
				},
				Keywords: goKeywords,
			},
		},
		{
			ID:          "shell",
			DisplayName: "Shell",
			Family:      FamilyShell,
			Extensions:  []string{".sh", ".bash", ".zsh"},
			Shebangs:    []string{"sh", "bash", "zsh", "dash"},
			Signatures: []ContentSignature{
				sig(`(?m)^#!\s*/(?:usr/)?bin/(?:env\s+)?(?:ba|z|da)?sh`, 0.50),
				sig(`\$\{?\w+`, 0.20),
				sig(`\b(?:fi|done|esac)\b`, 0.20),
				sig(`(?m)^\s*(?:echo|export)\b`, 0.15),
			},
			Fallback: shellRuleset,
		},
		{
			ID:          "sql",
			DisplayName: "SQL",
			Family:      FamilySQL,
			Extensions:  []string{".sql"},
			Signatures: []ContentSignature{
				sig(`(?im)^\s*select\b[\s\S]*?\bfrom\b`, 0.45),
				sig(`(?im)^\s*create\s+table\b`, 0.35),
				sig(`(?im)^\s*insert\s+into\b`, 0.35),
			},
			Fallback: sqlRuleset,
		},
		{
			ID:          "html",
			DisplayName: "HTML",
			Family:      FamilyMarkup,
			Extensions:  []string{".html", ".htm"},
			Signatures: []ContentSignature{
				sig(`(?i)<!doctype\s+html`, 0.40),
				sig(`(?i)<html[\s>]`, 0.35),
				sig(`(?i)<(?:div|span|body|head|p|a)[\s>]`, 0.25),
			},
			Fallback: markupRuleset,
		},
		{
			ID:          "css",
			DisplayName: "CSS",
			Family:      FamilyMarkup,
			Extensions:  []string{".css"},
			Signatures: []ContentSignature{
				sig(`[.#][\w-]+\s*\{`, 0.35),
				sig(`(?m)^\s*[\w-]+\s*:\s*[^;]+;`, 0.35),
			},
			Fallback: cssRuleset,
		},
		{
			ID:          "markdown",
			DisplayName: "Markdown",
			Family:      FamilyMarkup,
			Extensions:  []string{".md", ".markdown"},
			Filenames:   []string{"README"},
			Signatures: []ContentSignature{
				sig(`(?m)^#{1,6}\s+\S`, 0.35),
				sig(`\[[^\]]+\]\([^)]+\)`, 0.30),
			},
			Fallback: markdownRuleset,
		},
		{
			ID:          "json",
			DisplayName: "JSON",
			Family:      FamilyData,
			Extensions:  []string{".json"},
			Signatures: []ContentSignature{
				sig(`^\s*[\[{]`, 0.30),
				sig(`"[\w-]+"\s*:\s*`, 0.40),
			},
			Grammar:  jsonGrammar{},
			Fallback: dataRuleset,
		},
		{
			ID:          "yaml",
			DisplayName: "YAML",
			Family:      FamilyData,
			Extensions:  []string{".yaml", ".yml"},
			Signatures: []ContentSignature{
				sig(`(?m)^[\w-]+:\s*(?:\S|$)`, 0.30),
				sig(`(?m)^\s+- \S`, 0.25),
				sig(`(?m)^---\s*$`, 0.25),
			},
			Grammar:  yamlGrammar{},
			Fallback: dataRuleset,
		},
		{
			ID:          "xml",
			DisplayName: "XML",
			Family:      FamilyData,
			Extensions:  []string{".xml"},
			Signatures: []ContentSignature{
				sig(`<\?xml\s`, 0.45),
				sig(`<\w+[^>]*>[\s\S]*?</\w+>`, 0.30),
			},
			Grammar:  xmlGrammar{},
			Fallback: markupRuleset,
		},
		{
			ID:          "dockerfile",
			DisplayName: "Dockerfile",
			Family:      FamilyShell,
			Filenames:   []string{"Dockerfile", "Containerfile"},
			Signatures: []ContentSignature{
				sig(`(?m)^FROM\s+\S+`, 0.40),
				sig(`(?m)^(?:RUN|COPY|ADD|ENV|EXPOSE|CMD|ENTRYPOINT|WORKDIR)\b`, 0.35),
			},
			Fallback: &Ruleset{
				Family: FamilyShell,
				Rules: []Rule{
					rule("from", `(?m)^FROM\s+\S+`, 0.40),
					rule("instruction", `(?m)^(?:RUN|COPY|ADD|ENV|EXPOSE|CMD|ENTRYPOINT|WORKDIR)\b`, 0.35),
				},
				Keywords: shellKeywords,
			},
		},
		{
			ID:          "makefile",
			DisplayName: "Makefile",
			Family:      FamilyShell,
			Filenames:   []string{"Makefile", "makefile", "GNUmakefile"},
			Signatures: []ContentSignature{
				sig(`(?m)^[\w.-]+:(?:\s|$)`, 0.25),
				sig(`(?m)^\t\S`, 0.30),
				sig(`\$\([\w_]+\)`, 0.25),
			},
			Fallback: &Ruleset{
				Family: FamilyShell,
				Rules: []Rule{
					rule("target", `(?m)^[\w.-]+:(?:\s|$)`, 0.30),
					rule("recipe", `(?m)^\t\S`, 0.30),
					rule("var-ref", `\$\([\w_]+\)`, 0.25),
				},
				Keywords: shellKeywords,
			},
		},
		{
			ID:          "cisco",
			DisplayName: "Cisco IOS",
			Family:      FamilyConfig,
			Signatures: []ContentSignature{
				sig(`(?im)access-list\s+\d+\s+(?:permit|deny)`, 0.35),
				sig(`(?im)^interface\s+\w+`, 0.30),
				sig(`(?im)^router\s+(?:bgp|ospf|eigrp)`, 0.35),
			},
			Fallback: ciscoRuleset,
		},
		{
			ID:          "nginx",
			DisplayName: "nginx",
			Family:      FamilyConfig,
			Extensions:  []string{".conf"},
			Signatures: []ContentSignature{
				sig(`(?m)server\s*\{`, 0.30),
				sig(`(?m)location\s+[~*^]*\s*[\w/]+\s*\{`, 0.35),
				sig(`(?m)proxy_pass\s+https?://`, 0.30),
			},
			Fallback: nginxRuleset,
		},
		{
			ID:          "log",
			DisplayName: "Log",
			Family:      FamilyLog,
			Extensions:  []string{".log"},
			Signatures: []ContentSignature{
				sig(`\d{4}-\d{2}-\d{2}[T\s]\d{2}:\d{2}:\d{2}`, 0.35),
				sig(`\b(?:DEBUG|INFO|WARN|WARNING|ERROR|CRITICAL|FATAL)\b`, 0.35),
			},
			Fallback: logRuleset,
		},
		{
			ID:          Unknown,
			DisplayName: "Unknown",
			Family:      FamilyUnknown,
			Fallback:    unknownRuleset,
		},
	}
}
