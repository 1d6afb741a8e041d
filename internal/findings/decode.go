package findings

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"

	"github.com/gradeassist/pkg/models"
)

// RepairStats tracks what was done to make analyzer output parseable
type RepairStats struct {
	OriginalBytes    int      `json:"original_bytes"`
	RepairedBytes    int      `json:"repaired_bytes"`
	RepairStrategies []string `json:"repair_strategies"`
	WasRepaired      bool     `json:"was_repaired"`
}

// wireFinding accepts both the analyzer contract and the older mock-up shape ("code" for evidence)
type wireFinding struct {
	ID              string `json:"id"`
	Kind            string `json:"kind"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Severity        string `json:"severity"`
	EvidenceSnippet string `json:"evidence_snippet"`
	Code            string `json:"code"`
	SuggestedFix    string `json:"suggested_fix"`
}

type wireEnvelope struct {
	Findings  []wireFinding `json:"findings"`
	Issues    []wireFinding `json:"issues"`
	Strengths []wireFinding `json:"strengths"`
}

// Decode parses analyzer output into a Store. The payload may be a bare array of findings,
// an object with a "findings" array, or an object with separate "issues" and "strengths" arrays.
// Malformed JSON and JSON wrapped in prose or code fences is repaired first.
func Decode(raw []byte) (*Store, RepairStats, error) {
	payload := extractJSON(string(raw))
	if payload == "" {
		return nil, RepairStats{OriginalBytes: len(raw)}, fmt.Errorf("findings: no JSON found in input")
	}

	repaired, stats, err := repairJSON(payload)
	stats.OriginalBytes = len(raw)
	if err != nil {
		return nil, stats, err
	}
	if stats.WasRepaired {
		log.Debug().
			Strs("strategies", stats.RepairStrategies).
			Int("original_bytes", stats.OriginalBytes).
			Int("repaired_bytes", stats.RepairedBytes).
			Msg("Repaired analyzer JSON")
	}

	var wire []wireFinding
	trimmed := strings.TrimSpace(repaired)
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
			return nil, stats, fmt.Errorf("findings: decode array: %w", err)
		}
	} else {
		var env wireEnvelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			return nil, stats, fmt.Errorf("findings: decode object: %w", err)
		}
		wire = append(wire, env.Findings...)
		for _, w := range env.Issues {
			if w.Kind == "" {
				w.Kind = string(models.KindIssue)
			}
			wire = append(wire, w)
		}
		for _, w := range env.Strengths {
			if w.Kind == "" {
				w.Kind = string(models.KindStrength)
			}
			wire = append(wire, w)
		}
	}

	store, err := NewStore(toModels(wire))
	return store, stats, err
}

func toModels(wire []wireFinding) []models.Finding {
	out := make([]models.Finding, 0, len(wire))
	seen := make(map[string]int, len(wire))
	for _, w := range wire {
		kind := models.FindingKind(strings.ToLower(strings.TrimSpace(w.Kind)))
		if kind == "" {
			// Analyzers that omit the kind mark issues by giving them a severity
			kind = models.KindStrength
			if w.Severity != "" {
				kind = models.KindIssue
			}
		}
		evidence := w.EvidenceSnippet
		if evidence == "" {
			evidence = w.Code
		}

		id := strings.TrimSpace(w.ID)
		if id == "" {
			id = "F-" + shortIDFrom(string(kind), w.Title)
			if n := seen[id]; n > 0 {
				seen[id] = n + 1
				id = fmt.Sprintf("%s-%d", id, n+1)
			} else {
				seen[id] = 1
			}
		}

		out = append(out, models.Finding{
			ID:              id,
			Kind:            kind,
			Title:           w.Title,
			Description:     w.Description,
			Severity:        models.ParseSeverity(w.Severity),
			EvidenceSnippet: evidence,
			SuggestedFix:    w.SuggestedFix,
		})
	}
	return out
}

// repairJSON tries the cheap fix first and falls back to the jsonrepair library
func repairJSON(raw string) (string, RepairStats, error) {
	stats := RepairStats{}
	var probe interface{}
	if json.Unmarshal([]byte(raw), &probe) == nil {
		stats.RepairedBytes = len(raw)
		return raw, stats, nil
	}

	stats.WasRepaired = true
	repaired := raw

	if trailingComma.MatchString(repaired) {
		repaired = trailingComma.ReplaceAllString(repaired, "$1")
		stats.RepairStrategies = append(stats.RepairStrategies, "trailing_commas")
		if json.Unmarshal([]byte(repaired), &probe) == nil {
			stats.RepairedBytes = len(repaired)
			return repaired, stats, nil
		}
	}

	fixed, err := jsonrepair.JSONRepair(repaired)
	if err != nil {
		stats.RepairedBytes = len(repaired)
		return repaired, stats, fmt.Errorf("findings: JSON repair failed: %w", err)
	}
	stats.RepairStrategies = append(stats.RepairStrategies, "jsonrepair_library")
	stats.RepairedBytes = len(fixed)

	if err := json.Unmarshal([]byte(fixed), &probe); err != nil {
		return fixed, stats, fmt.Errorf("findings: JSON still invalid after repair: %w", err)
	}
	return fixed, stats, nil
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// extractJSON pulls the JSON payload out of fenced or prose-wrapped analyzer output
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return raw
	}

	if strings.Contains(raw, "```") {
		var lines []string
		inBlock := false
		for _, line := range strings.Split(raw, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inBlock = !inBlock
				continue
			}
			if inBlock {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
	}

	start := strings.IndexAny(raw, "{[")
	if start == -1 {
		return ""
	}
	return raw[start:]
}

// shortIDFrom generates a compact base36 id from the given parts
func shortIDFrom(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		_, _ = h.Write([]byte{'|'})
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, h.Sum64())
	n := uint64(b[3])<<32 | uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])

	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	out := make([]byte, 0, 8)
	for n > 0 {
		out = append(out, alphabet[n%36])
		n /= 36
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
