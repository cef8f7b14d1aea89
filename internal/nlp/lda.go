package nlp

import "math/rand"

// TopicModel is a latent Dirichlet allocation model fit by collapsed Gibbs
// sampling over raw term counts.
type TopicModel struct {
	Topics     int
	Iterations int
	Alpha      float64 // document-topic prior, 0 = 50/k
	Beta       float64 // topic-word prior, 0 = 0.01
	Seed       int64

	docTopic [][]float64 // per-document topic distribution after Fit
}

// Fit runs the sampler over a document-term count matrix. Rows with no mass
// get a uniform distribution.
func (m *TopicModel) Fit(counts [][]int) {
	k := m.Topics
	if k <= 0 {
		k = 5
	}
	iters := m.Iterations
	if iters <= 0 {
		iters = 50
	}
	alpha := m.Alpha
	if alpha <= 0 {
		alpha = 50.0 / float64(k)
	}
	beta := m.Beta
	if beta <= 0 {
		beta = 0.01
	}
	rng := rand.New(rand.NewSource(m.Seed))

	nDocs := len(counts)
	vocab := 0
	if nDocs > 0 {
		vocab = len(counts[0])
	}

	// token occurrence lists
	type token struct{ doc, term int }
	var tokens []token
	for d, row := range counts {
		for t, c := range row {
			for i := 0; i < c; i++ {
				tokens = append(tokens, token{doc: d, term: t})
			}
		}
	}

	z := make([]int, len(tokens))
	ndk := make([][]int, nDocs) // doc-topic counts
	for d := range ndk {
		ndk[d] = make([]int, k)
	}
	nkw := make([][]int, k) // topic-term counts
	for t := range nkw {
		nkw[t] = make([]int, vocab)
	}
	nk := make([]int, k) // tokens per topic

	for i, tok := range tokens {
		topic := rng.Intn(k)
		z[i] = topic
		ndk[tok.doc][topic]++
		nkw[topic][tok.term]++
		nk[topic]++
	}

	probs := make([]float64, k)
	vBeta := float64(vocab) * beta
	for it := 0; it < iters; it++ {
		for i, tok := range tokens {
			topic := z[i]
			ndk[tok.doc][topic]--
			nkw[topic][tok.term]--
			nk[topic]--

			total := 0.0
			for t := 0; t < k; t++ {
				p := (float64(ndk[tok.doc][t]) + alpha) *
					(float64(nkw[t][tok.term]) + beta) /
					(float64(nk[t]) + vBeta)
				probs[t] = p
				total += p
			}
			r := rng.Float64() * total
			topic = k - 1
			for t := 0; t < k; t++ {
				r -= probs[t]
				if r <= 0 {
					topic = t
					break
				}
			}

			z[i] = topic
			ndk[tok.doc][topic]++
			nkw[topic][tok.term]++
			nk[topic]++
		}
	}

	m.docTopic = make([][]float64, nDocs)
	for d := range counts {
		dist := make([]float64, k)
		sum := 0
		for t := 0; t < k; t++ {
			sum += ndk[d][t]
		}
		for t := 0; t < k; t++ {
			if sum == 0 {
				dist[t] = 1.0 / float64(k)
			} else {
				dist[t] = (float64(ndk[d][t]) + alpha) / (float64(sum) + float64(k)*alpha)
			}
		}
		m.docTopic[d] = dist
	}
}

// DocTopics returns the fitted per-document topic distributions.
func (m *TopicModel) DocTopics() [][]float64 { return m.docTopic }

// DominantTopic returns the argmax topic for document d, or -1 when the model
// was not fit over d.
func (m *TopicModel) DominantTopic(d int) int {
	if d < 0 || d >= len(m.docTopic) {
		return -1
	}
	best, bestP := 0, -1.0
	for t, p := range m.docTopic[d] {
		if p > bestP {
			best, bestP = t, p
		}
	}
	return best
}
