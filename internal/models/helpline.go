package models

type Helpline struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

// Helplines is the static crisis-support directory served to every user.
var Helplines = []Helpline{
	{
		ID:          "1",
		Name:        "National Suicide Prevention Lifeline",
		Number:      "988",
		Description: "Provides 24/7, free and confidential support for people in distress, prevention and crisis resources for you or your loved ones.",
		Logo:        "https://placehold.co/100x100.png?text=988",
	},
	{
		ID:          "2",
		Name:        "Crisis Text Line",
		Number:      "Text HOME to 741741",
		Description: "Connect with a crisis counselor for free, 24/7 support. Text HOME to 741741 from anywhere in the US.",
		Logo:        "https://placehold.co/100x100.png?text=CTL",
	},
	{
		ID:          "3",
		Name:        "The Trevor Project",
		Number:      "1-866-488-7386",
		Description: "Provides crisis intervention and suicide prevention services to lesbian, gay, bisexual, transgender, queer & questioning (LGBTQ) young people under 25.",
		Logo:        "https://placehold.co/100x100.png?text=Trevor",
	},
	{
		ID:          "4",
		Name:        "SAMHSA National Helpline",
		Number:      "1-800-662-HELP (4357)",
		Description: "Confidential free help, from public health agencies, to find substance use treatment and information. 24/7.",
		Logo:        "https://placehold.co/100x100.png?text=SAMHSA",
	},
}
