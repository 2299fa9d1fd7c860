package ml

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateRiskDataset produces synthetic financial profiles for the risk
// model. The matrix has 10 columns: the 7 serving features plus three extra
// engineered columns (disposable income, debt-service ratio, savings
// buffer). The serving feature builder emits only the first 7; the trailing
// columns are kept as-is from the production generator.
func GenerateRiskDataset(n int, seed uint64) ([][]float64, []float64) {
	src := rand.NewSource(seed)
	income := distuv.LogNormal{Mu: 10, Sigma: 0.3, Src: src}
	baseExpense := distuv.Uniform{Min: 0.4, Max: 0.8, Src: src}
	discretionary := distuv.Uniform{Min: 0.1, Max: 0.4, Src: src}
	savingsShare := distuv.Beta{Alpha: 2, Beta: 5, Src: src}
	debtLoad := distuv.Exponential{Rate: 2, Src: src} // scale 0.5
	incomeJitter := distuv.Normal{Mu: 1, Sigma: 0.05, Src: src}
	expenseJitter := distuv.Normal{Mu: 1, Sigma: 0.03, Src: src}
	labelNoise := distuv.Normal{Mu: 0, Sigma: 3, Src: src}

	features := make([][]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		inc := clamp(income.Rand(), 20000, 200000)
		expenses := inc * (baseExpense.Rand() + discretionary.Rand())
		savings := inc * savingsShare.Rand() * 0.6
		debt := inc * clamp(debtLoad.Rand(), 0, 2.0)

		expenseToIncome := expenses / math.Max(inc, 1)
		savingsToIncome := savings / math.Max(inc, 1)
		debtToIncome := debt / math.Max(inc, 1)

		disposable := inc - expenses
		debtService := 0.0
		if inc > 0 {
			debtService = debt / inc
		}
		savingsBuffer := 0.0
		if expenses > 0 {
			savingsBuffer = savings / expenses
		}

		features[i] = []float64{
			inc * incomeJitter.Rand(),
			expenses * expenseJitter.Rand(),
			savings,
			debt,
			debtToIncome,
			savingsToIncome,
			expenseToIncome,
			disposable,
			debtService,
			savingsBuffer,
		}

		label := (expenseToIncome*0.4 +
			(1-savingsToIncome)*0.3 +
			debtToIncome*0.25 +
			0.15/(1+savingsBuffer) -
			0.1*disposable/inc) * 100
		labels[i] = clamp(label+labelNoise.Rand(), 0, 100)
	}
	return features, labels
}

// GenerateLayoffDataset produces synthetic employment profiles with binary
// labels from a linear risk score thresholded at 0.5.
func GenerateLayoffDataset(n int, seed uint64) ([][]float64, []float64) {
	src := rand.NewSource(seed)
	rng := rand.New(src)
	experience := distuv.Uniform{Min: 1, Max: 30, Src: src}
	companyAge := distuv.Uniform{Min: 1, Max: 50, Src: src}
	performance := distuv.Uniform{Min: 1, Max: 5, Src: src}

	features := make([][]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		industry := float64(rng.Intn(5) + 1)
		exp := experience.Rand()
		age := companyAge.Rand()
		team := float64(rng.Intn(99) + 1)
		contract := float64(rng.Intn(2))
		perf := performance.Rand()

		features[i] = []float64{industry, exp, age, team, contract, perf}

		score := industry*0.1 - exp*0.02 - age*0.005 - perf*0.05
		if contract == 0 {
			score += 0.3
		}
		if score > 0.5 {
			labels[i] = 1
		}
	}
	return features, labels
}

// GenerateSavingsDataset produces synthetic projection inputs. Labels come
// from CompoundMonthly, so generation is O(n * months).
func GenerateSavingsDataset(n int, seed uint64) ([][]float64, []float64) {
	src := rand.NewSource(seed)
	rng := rand.New(src)
	current := distuv.Uniform{Min: 0, Max: 500000, Src: src}
	monthly := distuv.Uniform{Min: 0, Max: 50000, Src: src}
	expectedReturn := distuv.Uniform{Min: 2, Max: 15, Src: src}
	inflation := distuv.Uniform{Min: 1, Max: 8, Src: src}

	features := make([][]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		cur := current.Rand()
		dep := monthly.Rand()
		ret := expectedReturn.Rand()
		infl := inflation.Rand()
		months := rng.Intn(35) + 1
		investmentType := float64(rng.Intn(5))

		features[i] = []float64{cur, dep, ret, infl, float64(months), investmentType}
		labels[i] = CompoundMonthly(cur, dep, ret/100/12, months)
	}
	return features, labels
}
