package extract

const (
	UserPromptMarker     = "[USER_PROMPT]"
	CategoriesListMarker = "[CATEGORIES_LIST]"
	ProductMarker        = "[PRODUCT]"
	ChatCompletionMarker = "[CHAT_COMPLETION]"
)

// CategorySystemMessage is used for the category grouping call.
const CategorySystemMessage = "You are an AI assistant that helps people find information."

const IntentPromptTemplate = `Below is my story. I am trying to purchase some apparel.
---
### STORY ###
[USER_PROMPT]
---
Tell me who I might be and what my needs are. Suggests characteristics of the apparel I might be interested in.`

const AttributesPromptTemplate = `Below is my story. I am trying to purchase some apparel.
---
### STORY ###
[USER_PROMPT]
---
Return JSON object based on the user story with the following keys.
- gender; values must be from the following list: Boys, Girls, Womens, Mens, Unisex, Undefined. If you cannot determine the gender, use Undefined.
- minPrice; numeric value of the minimum price desired by the user. If you cannot determine the minimum desired price, use 0.
- maxPrice; numeric value of the maximum price desired by the user. If you cannot determine the maximum desired price, use 0.

Be precise. Do not show reasoning. You MUST return JSON object.
### INPUT ###
I am going to play soccer with my friends
### OUTPUT ###
{"gender":"Undefined"}
### INPUT ###
I am going to play soccer with my friends. I am a man.
### OUTPUT ###
{"gender":"Mens"}
### INPUT ###
I am looking for clothes for my daughter's tennis game on the weekend. I prefer to spend not more than 200 bucks.
### OUTPUT ###
{"gender":"Girls", "minPrice": 0, "maxPrice": 200}
### INPUT ###
I am looking for something special for my date night.
### OUTPUT ###
{"gender":"Womens"}
### INPUT ###
I am looking for something special for my date night. I want something special from $400
### OUTPUT ###
{"gender":"Womens", "minPrice": 400, "maxPrice":0}`

const ExtraQuestionsPromptTemplate = `Below is my story. I am trying to purchase some apparel.
---
### STORY ###
[USER_PROMPT]
---
Think of 5 additional apparel pieces I might be interested in based on my story. You MUST return a JSON array of 5 strings.
Be precise. Do not show reasoning.
### INPUT ###
I am looking for something special for my date night.
### OUTPUT ###
["Black dress", "High heels", "Elegant jewelry", "Red lipstick", "Stylish handbag"]
### INPUT ###
I have a business meeting planned
### OUTPUT ###
["Formal suit", "Tie", "Leather shoes", "Briefcase", "Wristwatch"]`

const CategoriesPromptTemplate = `You are given list of categories in machine format.
------
### CATEGORIES ###
[CATEGORIES_LIST]
-------
- Group categories into exactly 5 groups based on similarity and popularity.
- You MUST name each group summarizing categories in this group, use not more than 5 words for name.
- Map each of given categories to one of the named groups.
Be precise. Do not show reasoning. You MUST return JSON dictionary with EACH product categories as keys and mapped groups as values.
-------
Few examples:
### INPUT ###
girls~clothing~dresses jumpsuits~day|girls~clothing~dresses jumpsuits~party special occasion
mens~clothing~shirts~classic
boys~clothing~pajamas~slippers|boys~shoes~slippers
womens~clothing~dresses jumpsuits|womens~features~new arrivals
womens~shoes~boots
womens~shoes~heels
null
boys~clothing~pajamas~slippers|boys~shoes~slippers
### OUTPUT ###
{
    "girls~clothing~dresses jumpsuits~day|girls~clothing~dresses jumpsuits~party special occasion": "Girl's Clothing",
    "mens~clothing~shirts~classic": "Men's Clothing",
    "boys~clothing~pajamas~slippers|boys~shoes~slippers": "Boy's Clothing",
    "womens~clothing~dresses jumpsuits|womens~features~new arrivals": "Women's Clothing",
    "womens~shoes~boots": "Women's Shoes",
    "womens~shoes~heels": "Women's Shoes"
}
### INPUT ###
girls~clothing~dresses jumpsuits~day|girls~clothing~dresses jumpsuits~party special occasion
mens~clothing~shirts~classic
mens~clothing~shirts~classic
mens~clothing~shirts~classic
mens~clothing~t-shirts
mens~clothing~t-shirts
mens~clothing~t-shirts
boys~clothing~pajamas~slippers|boys~shoes~slippers
### OUTPUT ###
{
    "girls~clothing~dresses jumpsuits~day|girls~clothing~dresses jumpsuits~party special occasion": "Girl's Clothing",
    "mens~clothing~shirts~classic": "Men's Clothing",
    "mens~clothing~t-shirts": "Men's Clothing",
    "boys~clothing~pajamas~slippers|boys~shoes~slippers": "Boy's Clothing"
}`

const ProductReasoningTemplate = `Below is my story. I am trying to purchase apparel:
---
STORY
[USER_PROMPT]
---
Bellow is what product I picked:
---
PRODUCT
[PRODUCT]
---
Now tell me why you think I may like the product. Explain your reasoning.
`

const WhyLikeProductTemplate = `
Why you may like it?

[PRODUCT]

[CHAT_COMPLETION]
`

// Templates lets callers override the prompt of individual stages. Blank
// fields fall back to the built-in templates.
type Templates struct {
	Intent         string
	Attributes     string
	ExtraQuestions string
}
