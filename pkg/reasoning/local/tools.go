package local

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"agentic-reasoning-be/pkg/reasoning"

	"github.com/expr-lang/expr"
)

// toolOutcome is what a single tool produced for one subproblem.
type toolOutcome struct {
	tool       reasoning.Tool
	answer     string
	steps      []string
	confidence float64
	verified   bool
}

var (
	wordOperators = []struct {
		pattern *regexp.Regexp
		symbol  string
	}{
		{regexp.MustCompile(`(?i)\bmultiplied by\b`), " * "},
		{regexp.MustCompile(`(?i)\bdivided by\b`), " / "},
		{regexp.MustCompile(`(?i)\bto the power of\b`), " ^ "},
		{regexp.MustCompile(`(?i)\bmodulo\b`), " % "},
		{regexp.MustCompile(`(?i)\bplus\b`), " + "},
		{regexp.MustCompile(`(?i)\bminus\b`), " - "},
		{regexp.MustCompile(`(?i)\btimes\b`), " * "},
	}

	numberWords = map[string]string{
		"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
		"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
		"ten": "10", "eleven": "11", "twelve": "12", "thirteen": "13",
		"fourteen": "14", "fifteen": "15", "sixteen": "16", "seventeen": "17",
		"eighteen": "18", "nineteen": "19", "twenty": "20",
	}

	wordPattern     = regexp.MustCompile(`[A-Za-z]+`)
	nonArithmetic   = regexp.MustCompile(`[^0-9.+\-*/%^() ]`)
	spaces          = regexp.MustCompile(`\s+`)
	numberPattern   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	operatorPattern = regexp.MustCompile(`\d\s*[+\-*/%^]\s*[\d(]`)
	binaryPattern   = regexp.MustCompile(`^(-?\d+(?:\.\d+)?) ?([+\-*/]) ?(-?\d+(?:\.\d+)?)$`)

	circlePattern    = regexp.MustCompile(`(?i)area of (?:a )?circle`)
	squarePattern    = regexp.MustCompile(`(?i)area of (?:a )?square`)
	rectanglePattern = regexp.MustCompile(`(?i)area of (?:a )?rectangle`)
)

// normalizeNumberWords rewrites spelled-out small numbers and operator words
// into symbols the calculator understands.
func normalizeNumberWords(text string) string {
	for _, op := range wordOperators {
		text = op.pattern.ReplaceAllString(text, op.symbol)
	}
	return wordPattern.ReplaceAllStringFunc(text, func(w string) string {
		if digit, ok := numberWords[strings.ToLower(w)]; ok {
			return digit
		}
		return w
	})
}

// extractExpression strips everything but arithmetic characters. The result is
// only usable if it still contains a digit-operator-digit sequence.
func extractExpression(text string) (string, bool) {
	normalized := normalizeNumberWords(text)
	candidate := nonArithmetic.ReplaceAllString(normalized, " ")
	candidate = strings.TrimSpace(spaces.ReplaceAllString(candidate, " "))
	if candidate == "" || !operatorPattern.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

func evaluate(expression string) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluate %q: %v", expression, r)
		}
	}()

	out, err := expr.Eval(expression, nil)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", expression, err)
	}

	switch v := out.(type) {
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case float64:
		value = v
	default:
		return 0, fmt.Errorf("evaluate %q: non-numeric result %T", expression, out)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("evaluate %q: undefined result (division by zero?)", expression)
	}
	return value, nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func calculator(text string) (*toolOutcome, bool) {
	expression, ok := extractExpression(text)
	if !ok {
		return nil, false
	}

	value, err := evaluate(expression)
	if err != nil {
		return &toolOutcome{
			tool:       reasoning.ToolCalculator,
			steps:      []string{fmt.Sprintf("Extracted expression: %s", expression), err.Error()},
			confidence: 0.1,
		}, true
	}

	answer := formatNumber(value)

	return &toolOutcome{
		tool:   reasoning.ToolCalculator,
		answer: answer,
		steps: []string{
			fmt.Sprintf("Extracted expression: %s", expression),
			fmt.Sprintf("Evaluated %s = %s", expression, answer),
		},
		confidence: 0.95,
		verified:   verifyArithmetic(expression, value, answer),
	}, true
}

// verifyArithmetic checks the formatted answer rather than the evaluation: the
// answer must read back to the computed value, and for a single binary
// operation the inverse operation must recover the left operand.
func verifyArithmetic(expression string, value float64, answer string) bool {
	parsed, err := strconv.ParseFloat(answer, 64)
	if err != nil || !approxEqual(parsed, value) {
		return false
	}

	m := binaryPattern.FindStringSubmatch(expression)
	if m == nil {
		return true
	}
	a, errA := strconv.ParseFloat(m[1], 64)
	b, errB := strconv.ParseFloat(m[3], 64)
	if errA != nil || errB != nil {
		return false
	}

	switch m[2] {
	case "+":
		return approxEqual(parsed-b, a)
	case "-":
		return approxEqual(parsed+b, a)
	case "*":
		if b == 0 {
			return parsed == 0
		}
		return approxEqual(parsed/b, a)
	case "/":
		return approxEqual(parsed*b, a)
	}
	return true
}

func approxEqual(x, y float64) bool {
	return math.Abs(x-y) <= 1e-9*math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
}

func geometry(text string) (*toolOutcome, bool) {
	numbers := numberPattern.FindAllString(normalizeNumberWords(text), -1)
	values := make([]float64, 0, len(numbers))
	for _, n := range numbers {
		v, err := strconv.ParseFloat(n, 64)
		if err == nil {
			values = append(values, v)
		}
	}

	var (
		area    float64
		formula string
	)
	switch {
	case circlePattern.MatchString(text) && len(values) >= 1:
		area = math.Pi * values[0] * values[0]
		formula = fmt.Sprintf("pi * %s^2", formatNumber(values[0]))
	case squarePattern.MatchString(text) && len(values) >= 1:
		area = values[0] * values[0]
		formula = fmt.Sprintf("%s^2", formatNumber(values[0]))
	case rectanglePattern.MatchString(text) && len(values) >= 2:
		area = values[0] * values[1]
		formula = fmt.Sprintf("%s * %s", formatNumber(values[0]), formatNumber(values[1]))
	default:
		return nil, false
	}

	answer := strconv.FormatFloat(math.Round(area*100)/100, 'f', -1, 64)
	return &toolOutcome{
		tool:       reasoning.ToolGeometryCalculator,
		answer:     answer,
		steps:      []string{fmt.Sprintf("Applied area formula %s", formula), fmt.Sprintf("Area = %s", answer)},
		confidence: 0.9,
		verified:   area >= 0,
	}, true
}

// textParser is the last resort: it reports what it could read but does not
// claim an answer.
func textParser(text string) *toolOutcome {
	numbers := numberPattern.FindAllString(normalizeNumberWords(text), -1)
	step := "No numeric quantities found"
	if len(numbers) > 0 {
		step = fmt.Sprintf("Found quantities: %s", strings.Join(numbers, ", "))
	}
	return &toolOutcome{
		tool:       reasoning.ToolTextParser,
		steps:      []string{"Parsed problem text", step, "No applicable tool could derive an answer"},
		confidence: 0.2,
	}
}
