package prompts

import "strings"

// ExampleIdea is a ready-made idea offered to first-time users.
type ExampleIdea struct {
	Title       string
	Description string
}

// Template is a structured idea skeleton the user fills in.
type Template struct {
	Title       string
	Description string
	Template    string
	Category    Category
}

var exampleIdeas = []ExampleIdea{
	{
		Title:       "AI Travel Planner",
		Description: "A mobile app that uses AI to create personalized travel itineraries.",
	},
	{
		Title:       "Eco-Friendly Cleaning",
		Description: "A direct-to-consumer brand for sustainable, zero-waste cleaning products.",
	},
	{
		Title:       "Creative Business School",
		Description: "An online course platform for creative professionals to learn business skills.",
	},
	{
		Title:       "Smart Home Gardening",
		Description: "A subscription box service for indoor plants that includes smart sensors to monitor plant health.",
	},
}

var templates = []Template{
	{
		Title:       "New Product Launch",
		Description: "A structured template for launching a new product, covering the target audience, key features, and marketing channels.",
		Template: `Launch campaign for a new product.

Product Name: [Your Product Name]
Target Audience: [Describe your ideal customer]
Key Features:
- [Feature 1 and its benefit]
- [Feature 2 and its benefit]
- [Feature 3 and its benefit]
Unique Selling Proposition: [What makes your product different?]
Primary Marketing Channels: [e.g., Instagram, Email Marketing, Content Blog]`,
		Category: CategoryStrategy,
	},
	{
		Title:       "Social Media Content Series",
		Description: "Plan a cohesive series of posts for a social media platform. Define the theme, post types, and call to action.",
		Template: `A 5-part content series for social media.

Platform: [e.g., TikTok, LinkedIn, Instagram]
Campaign Theme: [e.g., 'Behind the Scenes', 'Customer Success Stories']
Content Formats: [e.g., Short-form video, Carousel posts, Infographics]
Key Message: [The core message you want to communicate]
Call to Action: [What should the audience do after seeing the content?]`,
		Category: CategorySocialHooks,
	},
	{
		Title:       "Brand Awareness Campaign",
		Description: "Outline a campaign focused on increasing brand recognition and reaching a new audience segment.",
		Template: `Brand awareness campaign strategy.

Brand Name: [Your Brand]
Core Brand Message: [Your brand's mission or value proposition]
New Audience Segment: [Describe the new audience you want to reach]
Campaign Hook: [A creative angle or big idea for the campaign]
Key Performance Indicators (KPIs): [e.g., Reach, Impressions, Website Traffic]`,
		Category: CategoryStrategy,
	},
	{
		Title:       "A/B Test Ad Copy",
		Description: "Generate variations of ad copy to test which message resonates best with your audience.",
		Template: `A/B test for ad copy on [Platform, e.g., Facebook Ads].

Product: [Product Name]
Target Audience: [Describe Audience]
Key Benefit to Highlight: [Main benefit]
Ad Copy Variation A (Control): [Your initial ad copy]
Ad Copy Variation B (Hypothesis): [Your new ad copy with one key change]
Metric for Success: [e.g., Click-Through Rate (CTR), Conversion Rate]`,
		Category: CategoryCreativeCopy,
	},
	{
		Title:       "Landing Page Specification",
		Description: "Create a technical specification for a new landing page, detailing all required sections and functionality.",
		Template: `Technical specification for a new landing page.

Page Goal: [e.g., Collect email sign-ups for a webinar]

Sections Required:
- Hero Section: [Headline, Sub-headline, CTA Button Text]
- Features/Benefits Section: [List 3-5 key features and their benefits]
- Social Proof Section: [e.g., Customer testimonials, logos of companies]
- About Us Section: [Brief company description]
- Sign-up Form: [Fields required: Name, Email]

Technical Notes: [e.g., Must be mobile-responsive, Page load speed under 2 seconds]`,
		Category: CategoryTechnicalSpec,
	},
	{
		Title:       "Image Generation for Ad",
		Description: "Craft a detailed prompt for an AI image generator to create a compelling visual for an advertisement.",
		Template: `AI image generation prompt for an ad campaign.

Style: [e.g., Photorealistic, Cinematic, 3D Render, illustration]
Subject: [Detailed description of the main subject]
Scene: [Describe the background, lighting, and environment]
Mood/Atmosphere: [e.g., Energetic and vibrant, Calm and serene, Mysterious]
Color Palette: [e.g., Warm tones, Cool blues, Monochromatic]
Aspect Ratio: [e.g., 16:9 for banners, 1:1 for social media posts]
Negative Prompts: [Things to avoid, e.g., text, blurry background]`,
		Category: CategoryImagePrompt,
	},
	{
		Title:       "Cinematic Video Ad",
		Description: "Create a scene-by-scene script for a short, engaging video advertisement.",
		Template: `Short video ad script (30 seconds).

Product: [Your Product]
Target Audience: [Describe Audience]

Scene 1 (0-5s):
- Visuals: [Describe a captivating opening shot]
- Voiceover/Text: [A strong hook or question]

Scene 2 (5-20s):
- Visuals: [Show the product in action, demonstrating its key benefit]
- Voiceover/Text: [Explain the problem and how the product solves it]

Scene 3 (20-25s):
- Visuals: [Show a happy customer or a satisfying result]
- Voiceover/Text: [Reinforce the main benefit]

Scene 4 (25-30s):
- Visuals: [Product shot with clear branding and logo]
- Voiceover/Text: [Clear Call to Action, e.g., 'Shop Now', 'Learn More']`,
		Category: CategoryVideoPrompt,
	},
	{
		Title:       "Unboxing Video Concept",
		Description: "Structure an 'unboxing' style video to showcase a product's packaging and first impressions.",
		Template: `Unboxing video concept for [Product Name].

Key Message: Highlight the premium experience and key features from the moment it's opened.
Music/Voiceover Style: [e.g., Upbeat, calm, voiceover with key points]

Shot 1: The box arrives. Show the branded packaging.
Shot 2: The unboxing process. Slow, satisfying shots of opening the package.
Shot 3: The 'reveal' of the product inside. Focus on the main product.
Shot 4: Close-ups of key features or included accessories.
Shot 5: Final shot of the product set up and ready to use, with a call to action overlay.`,
		Category: CategoryVideoPrompt,
	},
}

// ExampleIdeas returns the built-in example ideas.
func ExampleIdeas() []ExampleIdea {
	out := make([]ExampleIdea, len(exampleIdeas))
	copy(out, exampleIdeas)
	return out
}

// Templates returns the built-in prompt templates.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// TemplateFilter narrows the template list. Zero value matches everything.
type TemplateFilter struct {
	Category Category
	Query    string
}

// FilterTemplates returns templates in the filter's category whose title or description contains
// the query, case-insensitively.
func FilterTemplates(ts []Template, f TemplateFilter) []Template {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	var out []Template
	for _, t := range ts {
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}
