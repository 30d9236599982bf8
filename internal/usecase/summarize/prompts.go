package summarize

// maxContentLength caps how much article text is sent to the provider;
// content beyond this is truncated with a trailing note.
const maxContentLength = 15000

// technicalTerms suggests complex content worth the standard tier even
// when word count alone wouldn't trigger it.
var technicalTerms = []string{
	"algorithm", "neural", "quantum", "blockchain", "protocol",
	"cryptographic", "machine learning", "artificial intelligence",
	"api", "infrastructure", "architecture", "microservices",
	"distributed", "consensus", "encryption", "compiler",
	"semiconductor", "genomic", "molecular", "theorem",
}

// systemPrompt establishes the summarizer's persona and is sent as the
// cacheable system block for providers that support prompt caching.
const systemPrompt = `You are an expert technology journalist writing for software engineers and AI practitioners. Your summaries are clear, direct, and technically informed while remaining accessible.

Core principles:
- Present information directly and factually, no meta-language like "This article explains..." or "The author discusses..."
- Use active voice and simple syntax
- Include technical details when they matter; omit jargon that doesn't add meaning
- Always connect stories to their practical implications for builders and practitioners
- Be skeptical of marketing language and press release hype, focus on substance`

// instructionPrompt is the static, cacheable half of the step-1 generate
// call; the dynamic article content is appended (or passed separately to
// providers that support a cacheable prefix) at call time.
const instructionPrompt = `Summarize the article below. Respond with valid JSON only, no other text.

CONTENT TYPE DETECTION:
First, classify the article as one of: news, analysis, tutorial, review, research, newsletter
- news: Announcements, product launches, funding, acquisitions, breaking developments
- analysis: Opinion pieces, commentary, predictions, industry analysis
- tutorial: How-to guides, technical walkthroughs, implementation guides
- review: Product reviews, comparisons, evaluations
- research: Academic papers, technical reports, benchmark studies
- newsletter: Multi-story digests, roundups, curated links

HEADLINE GUIDELINES (8-12 words):
- Lead with the most searchable noun (company name, product, technology)
- Use a strong, active verb
- Include one concrete detail (number, name, or outcome)
- Do NOT repeat the article's original headline verbatim
- Avoid vague words: "new," "big," "major," "revolutionary," "game-changing"
- Avoid clickbait: "You won't believe," "Here's why," "Everything you need to know"

SUMMARY GUIDELINES:
Write 4-6 sentences as flowing prose (no bullet points) for single-story articles. For multi-story articles (newsletters, roundups), write one paragraph per major story, ordered by importance, separated by blank lines.

SPECIAL HANDLING BY CONTENT TYPE:
- analysis/opinion: Note the author's position neutrally without editorializing
- tutorial: Preserve the key actionable steps or techniques covered
- review: Include the verdict and primary pros/cons
- research: Note methodology, sample sizes, and any stated limitations
- news (press releases): Be skeptical, distinguish concrete announcements from aspirational claims

KEY POINTS GUIDELINES:
- 3-5 bullet points with distinct, scannable takeaways
- Include specific facts, numbers, dates, or names

Spell out numbers ("8 billion" not "8B") and "percent" (not "%"). Use active voice ("released" not "has released"). Omit background readers likely know.

Respond with this exact JSON structure:
{
  "headline": "Your headline here",
  "summary": "Your summary paragraphs here. Use \n\n for paragraph breaks in multi-story summaries.",
  "key_points": ["First point", "Second point", "Third point"],
  "content_type": "news|analysis|tutorial|review|research|newsletter"
}`

// criticPrompt drives the step-2 review pass, run only for long or
// multi-story content.
const criticPrompt = `Evaluate the following summary against quality standards, make corrections if needed, and write an improved headline.

You will receive the original article title and a JSON summary produced by a first-pass summarizer.

EVALUATION CRITERIA:

1. STRUCTURE: newsletters get one paragraph per story; single-story articles get 4-6 flowing sentences, no fragmentation.
2. READABILITY: no meta-language, active voice throughout, numbers spelled out, no unnecessary background.
3. KEY POINTS: 3-5 distinct takeaways with no overlap, each with a specific fact, number, date, or name.
4. HEADLINE (write a new one): 8-12 words, leads with the most searchable noun, strong active verb, one concrete detail, must not repeat the original article title, no vague words or clickbait.

If the summary is already good, keep it unchanged but still write the headline fresh.

Respond with valid JSON only:
{
  "headline": "Your improved headline here",
  "summary": "The revised summary (or original text if no changes needed)",
  "key_points": ["Revised points (or original if no changes needed)"],
  "content_type": "news|analysis|tutorial|review|research|newsletter"
}`
