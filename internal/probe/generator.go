package probe

import (
	"math/rand/v2"
	"strconv"

	"github.com/okian/screening/internal/domain/screening"
)

// Kinds of invalid input the generator produces.
const (
	invalidNegative = iota
	invalidTooHigh
	invalidFraction
	invalidMissingGrade
	invalidKinds
)

// Generate builds n cases from seed. Roughly invalidRatio of them are invalid.
// The same seed always yields the same cases.
func Generate(n int, invalidRatio float64, seed uint64) []Case {
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	labels := screening.Labels()

	cases := make([]Case, n)
	for i := range cases {
		raw := screening.RawInput{
			ExamScore: strconv.Itoa(rnd.IntN(screening.MaxExamScore + 1)),
			Grades:    make([]string, screening.RequiredSubjects),
		}
		for g := range raw.Grades {
			raw.Grades[g] = string(labels[rnd.IntN(len(labels))])
		}
		if rnd.Float64() < invalidRatio {
			corrupt(rnd, &raw)
		}
		cases[i] = expect(i, raw)
	}
	return cases
}

func corrupt(rnd *rand.Rand, raw *screening.RawInput) {
	switch rnd.IntN(invalidKinds) {
	case invalidNegative:
		raw.ExamScore = strconv.Itoa(-1 - rnd.IntN(screening.MaxExamScore))
	case invalidTooHigh:
		raw.ExamScore = strconv.Itoa(screening.MaxExamScore + 1 + rnd.IntN(screening.MaxExamScore))
	case invalidFraction:
		raw.ExamScore += ".5"
	case invalidMissingGrade:
		raw.Grades[rnd.IntN(len(raw.Grades))] = ""
	}
}

// expect computes the outcome of raw with the local calculator.
func expect(index int, raw screening.RawInput) Case {
	c := Case{Index: index, Input: raw}
	res, err := screening.Calculate(raw)
	if err != nil {
		c.ErrorKey = screening.KindOf(err)
		c.Message = screening.FormatError(err)
		return c
	}
	c.Total = res.Total
	c.Message = screening.FormatResult(res)
	return c
}
