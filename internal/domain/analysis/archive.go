package analysis

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidArchive is returned when the payload is not a readable zip.
var ErrInvalidArchive = errors.New("invalid zip archive")

// Only text-like source/script/config entries are scanned; binary entries
// outside this allowlist are skipped by design.
var reScanExt = regexp.MustCompile(`(?i)\.(js|ts|jsx|tsx|mjs|cjs|json)$`)

// Scan detectors, compiled once. Each call to ScanArchive is independent and
// side-effect free; no match cursor state is shared between scans.
var (
	reEval      = regexp.MustCompile(`\beval\s*\(`)
	reNewFn     = regexp.MustCompile(`\bnew\s+Function\s*\(`)
	reFnCtor    = regexp.MustCompile(`\bFunction\s*\(\s*['"` + "`" + `]`)
	reChildProc = regexp.MustCompile(`\bchild_process\b|\bexec\s*\(|\bspawn\s*\(`)
	reB64Call   = regexp.MustCompile(`\batob\s*\(|\bBuffer\.from\s*\(\s*[^,)]+,\s*['"` + "`" + `]base64['"` + "`" + `]\s*\)`)
	reB64Blob   = regexp.MustCompile(`['"` + "`" + `]([A-Za-z0-9+/=]{40,})['"` + "`" + `]`)
	reRemoteCmd = regexp.MustCompile(`(?i)\b(curl|wget|powershell)\b`)
	reScanURL   = regexp.MustCompile(`(?i)\bhttps?://[^\s"'` + "`" + `)]+`)
	reFSPath    = regexp.MustCompile(`(?i)\.(ssh|pem|keychain)|[\\/]\.ssh[\\/]|AppData|Keychain|credentials?`)
	reWalletKw  = regexp.MustCompile(`(?i)\b(seed|mnemonic|private\s*key|wallet|metamask)\b`)
	reWalletDep = regexp.MustCompile(`(?i)\b(ethers|web3|bitcoin-core|bip39|tronweb|@solana/web3\.js|near-api-js|algosdk)\b`)
	reLifecycle = regexp.MustCompile(`(?i)postinstall|preinstall|prepare|install`)
	reBuildServ = regexp.MustCompile(`start|serve`)
	reDecodedOK = regexp.MustCompile(`(?i)https?://|function|require|eval|new function`)
	reSpace     = regexp.MustCompile(`\s+`)
)

type dynExecDetector struct {
	re   *regexp.Regexp
	note string
}

// Order matters only for finding emission order, not for the flag set.
var dynExecDetectors = []dynExecDetector{
	{reEval, FlagEvalUsage},
	{reNewFn, FlagNewFunction},
	{reFnCtor, FlagFunctionCtor},
}

// ScanReport is the raw archive scan output before verdict assembly.
type ScanReport struct {
	Signals RepoSignals `json:"signals"`
	Flags   []string    `json:"flags"`
	Score   int         `json:"score"`
}

type packageManifest struct {
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ScanArchive walks a zip archive's text-like entries and applies the fixed
// detector battery. The only failure mode is an unreadable archive; malformed
// manifests and undecodable base64 candidates are skipped silently.
func ScanArchive(zipBytes []byte) (ScanReport, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return ScanReport{}, ErrInvalidArchive
	}

	signals := RepoSignals{
		Scripts:       map[string]string{},
		FilesWithHits: []string{},
		Endpoints:     []string{},
		DecodedBlobs:  []DecodedBlob{},
		WalletDeps:    []string{},
		FSSensitive:   []CodeHit{},
		DynamicExec:   []CodeHit{},
		Lifecycle:     []string{},
		ChildProcess:  []CodeHit{},
		Obfuscation:   []CodeHit{},
		Findings:      []Finding{},
		Meta:          map[string]any{},
	}
	endpointSeen := map[string]struct{}{}

	scriptsBlob := scanManifest(zr, &signals)

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !reScanExt.MatchString(entry.Name) {
			continue
		}
		content, err := readEntry(entry)
		if err != nil {
			continue
		}
		scanFile(entry.Name, content, &signals, endpointSeen)
	}

	flags := collectFlags(&signals, scriptsBlob)
	return ScanReport{
		Signals: signals,
		Flags:   flags,
		Score:   ScoreRepoFlags(flags),
	}, nil
}

// scanManifest parses the root package.json if present. A malformed manifest
// records nothing and the scan continues. Returns the serialized script set
// used by the build-script flag test.
func scanManifest(zr *zip.Reader, signals *RepoSignals) string {
	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == "package.json" {
			entry = f
			break
		}
	}
	if entry == nil {
		return ""
	}
	content, err := readEntry(entry)
	if err != nil {
		return ""
	}

	var pkg packageManifest
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return ""
	}
	if pkg.Scripts != nil {
		signals.Scripts = pkg.Scripts
	}

	blob := serializeScripts(pkg.Scripts)
	if reLifecycle.MatchString(blob) {
		signals.Lifecycle = append(signals.Lifecycle, FlagNpmLifecycle)
	}
	if reRemoteCmd.MatchString(blob) {
		signals.Findings = append(signals.Findings, Finding{Type: FindingPattern, Note: FlagRemoteCmd})
	}

	deps := map[string]struct{}{}
	for name := range pkg.Dependencies {
		deps[name] = struct{}{}
	}
	for name := range pkg.DevDependencies {
		deps[name] = struct{}{}
	}
	for name := range deps {
		if reWalletDep.MatchString(name) {
			signals.WalletDeps = append(signals.WalletDeps, name)
		}
	}
	sort.Strings(signals.WalletDeps)

	return blob
}

// serializeScripts flattens the script map deterministically so regex tests
// over it do not depend on map iteration order.
func serializeScripts(scripts map[string]string) string {
	if len(scripts) == 0 {
		return ""
	}
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(scripts[name])
		b.WriteString("\n")
	}
	return b.String()
}

func scanFile(name, content string, signals *RepoSignals, endpointSeen map[string]struct{}) {
	before := len(signals.Findings)

	// Outbound URL references.
	for _, loc := range reScanURL.FindAllStringIndex(content, -1) {
		url := content[loc[0]:loc[1]]
		if _, ok := endpointSeen[url]; !ok {
			endpointSeen[url] = struct{}{}
			signals.Endpoints = append(signals.Endpoints, url)
		}
		signals.Findings = append(signals.Findings, Finding{
			Type:    FindingEndpoint,
			File:    name,
			Line:    lineOf(content, loc[0]),
			Snippet: snippetAt(content, loc[0]),
			Note:    FlagExfilEndpoint,
		})
	}

	// Dynamic code execution call sites, sub-classified per form.
	for _, d := range dynExecDetectors {
		for _, loc := range d.re.FindAllStringIndex(content, -1) {
			hit := CodeHit{File: name, Line: lineOf(content, loc[0]), Snippet: snippetAt(content, loc[0])}
			signals.DynamicExec = append(signals.DynamicExec, hit)
			signals.Findings = append(signals.Findings, Finding{
				Type:    FindingPattern,
				File:    hit.File,
				Line:    hit.Line,
				Snippet: hit.Snippet,
				Note:    d.note,
			})
		}
	}

	// Process spawning.
	for _, loc := range reChildProc.FindAllStringIndex(content, -1) {
		hit := CodeHit{File: name, Line: lineOf(content, loc[0]), Snippet: snippetAt(content, loc[0])}
		signals.ChildProcess = append(signals.ChildProcess, hit)
		signals.Findings = append(signals.Findings, Finding{
			Type:    FindingPattern,
			File:    hit.File,
			Line:    hit.Line,
			Snippet: hit.Snippet,
			Note:    FlagChildProcess,
		})
	}

	// Explicit base64 decode call sites.
	for _, loc := range reB64Call.FindAllStringIndex(content, -1) {
		hit := CodeHit{File: name, Line: lineOf(content, loc[0]), Snippet: snippetAt(content, loc[0])}
		signals.Obfuscation = append(signals.Obfuscation, hit)
		signals.Findings = append(signals.Findings, Finding{
			Type:    FindingPattern,
			File:    hit.File,
			Line:    hit.Line,
			Snippet: hit.Snippet,
			Note:    FlagBase64Decode,
		})
	}

	// Long quoted base64 blobs, speculatively decoded. Decode failures and
	// non-indicative plaintext are not findings.
	for _, m := range reB64Blob.FindAllStringSubmatchIndex(content, -1) {
		blob := content[m[2]:m[3]]
		decoded, ok := decodeBlob(blob)
		if !ok || !reDecodedOK.MatchString(decoded) {
			continue
		}
		line := lineOf(content, m[0])
		signals.DecodedBlobs = append(signals.DecodedBlobs, DecodedBlob{
			File:    name,
			Line:    line,
			Preview: collapse(truncate(decoded, 160)),
		})
		signals.Findings = append(signals.Findings, Finding{
			Type:    FindingBlob,
			File:    name,
			Line:    line,
			Snippet: truncate(decoded, 120),
			Note:    FlagBase64Decode,
		})
	}

	// Sensitive filesystem paths gate one finding per file.
	if reFSPath.MatchString(content) {
		signals.FSSensitive = append(signals.FSSensitive, CodeHit{File: name, Snippet: "fs sensitive pattern"})
		signals.Findings = append(signals.Findings, Finding{Type: FindingFS, File: name, Note: FlagFSSensitive})
	}

	// Wallet/seed keyword targeting, once per file.
	if reWalletKw.MatchString(content) {
		signals.Findings = append(signals.Findings, Finding{Type: FindingPattern, File: name, Note: FlagWalletTargeting})
	}

	if len(signals.Findings) > before {
		signals.FilesWithHits = append(signals.FilesWithHits, name)
	}
}

func collectFlags(signals *RepoSignals, scriptsBlob string) []string {
	flags := []string{}
	seen := map[string]struct{}{}
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		flags = append(flags, f)
	}
	for _, f := range signals.Findings {
		add(f.Note)
	}
	if len(signals.Lifecycle) > 0 {
		add(FlagNpmLifecycle)
	}
	if scriptsBlob != "" && reBuildServ.MatchString(scriptsBlob) {
		add(FlagSuspiciousBuild)
	}
	return flags
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeBlob tries standard then raw base64 and requires the result to be
// valid text.
func decodeBlob(blob string) (string, bool) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(blob)
		if err != nil {
			return "", false
		}
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// lineOf reports the 1-based line number of a byte offset.
func lineOf(content string, idx int) int {
	if idx > len(content) {
		idx = len(content)
	}
	return 1 + strings.Count(content[:idx], "\n")
}

// snippetAt returns a whitespace-collapsed window of at most 120 chars
// starting at the match offset.
func snippetAt(content string, start int) string {
	end := start + 120
	if end > len(content) {
		end = len(content)
	}
	return collapse(content[start:end])
}

func collapse(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
