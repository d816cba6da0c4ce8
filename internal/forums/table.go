package forums

import "github.com/threadtoon/pkg/models"

// defaultCategories is the curated topic table. Weights are relative
// confidence within a category, 0-100.
func defaultCategories() map[string]Category {
	return map[string]Category{
		"tv_shows": {
			Keywords: []string{"tv", "television", "show", "series", "episode", "season", "binge", "streaming", "netflix", "hulu"},
			Forums: []models.SubredditMatch{
				{Name: "television", Weight: 95, Description: "TV discussions"},
				{Name: "netflix", Weight: 85, Description: "Netflix content"},
				{Name: "hulu", Weight: 75, Description: "Hulu shows"},
				{Name: "televisionsuggestions", Weight: 70, Description: "TV recommendations"},
			},
		},
		"movies": {
			Keywords: []string{"movie", "film", "cinema", "theater", "blockbuster", "oscar", "hollywood", "movie review"},
			Forums: []models.SubredditMatch{
				{Name: "movies", Weight: 100, Description: "Movie discussions"},
				{Name: "MovieSuggestions", Weight: 85, Description: "Movie recommendations"},
				{Name: "TrueFilm", Weight: 80, Description: "In-depth film analysis"},
				{Name: "boxoffice", Weight: 70, Description: "Box office news"},
			},
		},
		"ai_news": {
			Keywords: []string{"ai", "artificial intelligence", "machine learning", "ml", "gpt", "openai", "chatgpt", "llm", "claude", "generative ai", "ai tools"},
			Forums: []models.SubredditMatch{
				{Name: "artificial", Weight: 100, Description: "AI news and discussion"},
				{Name: "MachineLearning", Weight: 95, Description: "ML research"},
				{Name: "OpenAI", Weight: 90, Description: "OpenAI community"},
				{Name: "ChatGPT", Weight: 85, Description: "ChatGPT discussions"},
				{Name: "LocalLLaMA", Weight: 80, Description: "Local LLM development"},
			},
		},
		"tech_news": {
			Keywords: []string{"tech", "technology", "gadget", "innovation", "tech news", "new tech", "tech review"},
			Forums: []models.SubredditMatch{
				{Name: "technology", Weight: 100, Description: "Technology news"},
				{Name: "gadgets", Weight: 85, Description: "Gadget reviews"},
				{Name: "Futurology", Weight: 80, Description: "Future tech"},
				{Name: "technews", Weight: 75, Description: "Tech news"},
			},
		},
		"programming": {
			Keywords: []string{"programming", "coding", "developer", "software", "code", "javascript", "python", "react", "web development", "software development"},
			Forums: []models.SubredditMatch{
				{Name: "programming", Weight: 100, Description: "Programming discussions"},
				{Name: "webdev", Weight: 90, Description: "Web development"},
				{Name: "learnprogramming", Weight: 85, Description: "Learn to code"},
				{Name: "javascript", Weight: 80, Description: "JavaScript community"},
				{Name: "Python", Weight: 80, Description: "Python community"},
			},
		},
		"startup": {
			Keywords: []string{"startup", "entrepreneur", "founder", "side project", "saas", "business idea", "launch", "startup ideas", "small business"},
			Forums: []models.SubredditMatch{
				{Name: "startups", Weight: 100, Description: "Startup community"},
				{Name: "Entrepreneur", Weight: 95, Description: "Entrepreneurship"},
				{Name: "SideProject", Weight: 90, Description: "Side projects"},
				{Name: "smallbusiness", Weight: 80, Description: "Small business owners"},
				{Name: "SaaS", Weight: 75, Description: "SaaS discussions"},
			},
		},
		"investing": {
			Keywords: []string{"invest", "stock", "crypto", "bitcoin", "trading", "portfolio", "finance", "investment", "stock market", "cryptocurrency"},
			Forums: []models.SubredditMatch{
				{Name: "investing", Weight: 100, Description: "Investment discussions"},
				{Name: "stocks", Weight: 95, Description: "Stock market"},
				{Name: "CryptoCurrency", Weight: 90, Description: "Crypto discussions"},
				{Name: "wallstreetbets", Weight: 85, Description: "Trading community"},
				{Name: "personalfinance", Weight: 80, Description: "Personal finance"},
			},
		},
		"gaming": {
			Keywords: []string{"gaming", "video game", "game", "playstation", "xbox", "nintendo", "pc gaming", "game review", "gaming news"},
			Forums: []models.SubredditMatch{
				{Name: "gaming", Weight: 100, Description: "Gaming community"},
				{Name: "Games", Weight: 95, Description: "Game discussions"},
				{Name: "pcgaming", Weight: 90, Description: "PC gaming"},
				{Name: "PS5", Weight: 80, Description: "PlayStation 5"},
				{Name: "XboxSeriesX", Weight: 80, Description: "Xbox Series X"},
			},
		},
		"cooking": {
			Keywords: []string{"cooking", "recipe", "food", "kitchen", "chef", "meal", "cuisine", "cooking tips", "recipe sharing"},
			Forums: []models.SubredditMatch{
				{Name: "Cooking", Weight: 100, Description: "Cooking tips"},
				{Name: "recipes", Weight: 95, Description: "Recipe sharing"},
				{Name: "AskCulinary", Weight: 90, Description: "Culinary questions"},
				{Name: "food", Weight: 85, Description: "Food appreciation"},
				{Name: "MealPrepSunday", Weight: 75, Description: "Meal prep"},
			},
		},
		"science": {
			Keywords: []string{"science", "research", "study", "scientific", "discovery", "physics", "biology", "chemistry", "astronomy", "space"},
			Forums: []models.SubredditMatch{
				{Name: "science", Weight: 100, Description: "Science news"},
				{Name: "askscience", Weight: 95, Description: "Ask scientists"},
				{Name: "space", Weight: 90, Description: "Space exploration"},
				{Name: "Physics", Weight: 85, Description: "Physics discussions"},
				{Name: "biology", Weight: 80, Description: "Biology discussions"},
			},
		},
		"productivity": {
			Keywords: []string{"productivity", "self improvement", "habits", "motivation", "discipline", "goals", "time management", "productivity tips"},
			Forums: []models.SubredditMatch{
				{Name: "productivity", Weight: 100, Description: "Productivity tips"},
				{Name: "getdisciplined", Weight: 95, Description: "Building discipline"},
				{Name: "DecidingToBeBetter", Weight: 90, Description: "Self improvement"},
				{Name: "selfimprovement", Weight: 85, Description: "Personal growth"},
			},
		},
		"design": {
			Keywords: []string{"design", "ui", "ux", "graphic design", "web design", "figma", "creative", "design inspiration", "ui ux"},
			Forums: []models.SubredditMatch{
				{Name: "design", Weight: 100, Description: "Design community"},
				{Name: "web_design", Weight: 95, Description: "Web design"},
				{Name: "UI_Design", Weight: 90, Description: "UI design"},
				{Name: "graphic_design", Weight: 85, Description: "Graphic design"},
			},
		},
		"life_hacks": {
			Keywords: []string{"life hack", "tip", "advice", "trick", "efficiency", "useful", "how to", "life tips", "practical tips"},
			Forums: []models.SubredditMatch{
				{Name: "LifeProTips", Weight: 100, Description: "Life tips"},
				{Name: "explainlikeimfive", Weight: 90, Description: "Simple explanations"},
				{Name: "NoStupidQuestions", Weight: 85, Description: "General questions"},
				{Name: "didntknowiwantedthat", Weight: 80, Description: "Interesting finds"},
			},
		},
		"general_news": {
			Keywords: []string{"news", "world", "current event", "politics", "breaking", "global", "news update", "current affairs"},
			Forums: []models.SubredditMatch{
				{Name: "news", Weight: 100, Description: "General news"},
				{Name: "worldnews", Weight: 95, Description: "Global news"},
				{Name: "upliftingnews", Weight: 80, Description: "Positive news"},
				{Name: "nottheonion", Weight: 75, Description: "True but weird"},
			},
		},
		"health": {
			Keywords: []string{"health", "fitness", "wellness", "exercise", "nutrition", "diet", "mental health", "meditation", "yoga"},
			Forums: []models.SubredditMatch{
				{Name: "Fitness", Weight: 100, Description: "Fitness community"},
				{Name: "loseit", Weight: 95, Description: "Weight loss"},
				{Name: "meditation", Weight: 90, Description: "Meditation practice"},
				{Name: "yoga", Weight: 85, Description: "Yoga community"},
				{Name: "health", Weight: 80, Description: "General health"},
			},
		},
		"travel": {
			Keywords: []string{"travel", "vacation", "trip", "destination", "backpacking", "tourism", "travel tips"},
			Forums: []models.SubredditMatch{
				{Name: "travel", Weight: 100, Description: "Travel discussions"},
				{Name: "solotravel", Weight: 90, Description: "Solo travel"},
				{Name: "backpacking", Weight: 85, Description: "Backpacking"},
				{Name: "travelhacks", Weight: 80, Description: "Travel tips"},
			},
		},
		"education": {
			Keywords: []string{"education", "learn", "study", "school", "university", "college", "learning", "online learning"},
			Forums: []models.SubredditMatch{
				{Name: "learnprogramming", Weight: 100, Description: "Learn to code"},
				{Name: "education", Weight: 90, Description: "Education discussions"},
				{Name: "AskReddit", Weight: 85, Description: "General questions"},
				{Name: "explainlikeimfive", Weight: 80, Description: "Simple explanations"},
			},
		},
		"pets": {
			Keywords: []string{"pets", "cat", "dog", "animal", "pet care", "dog training", "cat behavior"},
			Forums: []models.SubredditMatch{
				{Name: "aww", Weight: 100, Description: "Cute animals"},
				{Name: "cats", Weight: 95, Description: "Cat community"},
				{Name: "dogs", Weight: 90, Description: "Dog community"},
				{Name: "pets", Weight: 85, Description: "Pet discussions"},
			},
		},
		"fashion": {
			Keywords: []string{"fashion", "style", "beauty", "makeup", "skincare", "hair care", "fashion tips"},
			Forums: []models.SubredditMatch{
				{Name: "fashion", Weight: 100, Description: "Fashion community"},
				{Name: "makeupaddiction", Weight: 90, Description: "Makeup enthusiasts"},
				{Name: "SkincareAddiction", Weight: 85, Description: "Skincare tips"},
				{Name: "malefashionadvice", Weight: 80, Description: "Men's fashion"},
			},
		},
	}
}
