package interview

import "github.com/jonathan/skillbuddy/internal/types"

func q(id int, text, category, difficulty string) types.Question {
	return types.Question{ID: id, Question: text, Category: category, Difficulty: difficulty}
}

// DefaultCatalog returns the built-in question catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[string][]types.Question{
		"SoftwareDev": {
			q(1, "Can you explain the difference between REST and GraphQL APIs?", "API Design", "intermediate"),
			q(2, "What is the difference between synchronous and asynchronous programming?", "Programming Concepts", "intermediate"),
			q(3, "Explain the concept of Big O notation and its importance.", "Algorithms", "intermediate"),
			q(4, "What are the main principles of object-oriented programming?", "Programming Concepts", "beginner"),
			q(5, "How do you handle errors in your code?", "Error Handling", "intermediate"),
			q(6, "What is the difference between SQL and NoSQL databases?", "Databases", "intermediate"),
			q(7, "Explain the concept of version control and Git.", "Tools", "beginner"),
			q(8, "What is test-driven development (TDD)?", "Testing", "intermediate"),
			q(9, "How do you optimize code performance?", "Performance", "advanced"),
			q(10, "Explain the concept of microservices architecture.", "Architecture", "advanced"),
		},
		"DataAnalyst": {
			q(1, "What tools do you use for data visualization and why?", "Tools", "beginner"),
			q(2, "How would you handle missing data in a dataset?", "Data Cleaning", "intermediate"),
			q(3, "Explain the difference between correlation and causation.", "Statistics", "intermediate"),
			q(4, "What is the difference between mean, median, and mode?", "Statistics", "beginner"),
			q(5, "How do you validate the accuracy of your analysis?", "Data Quality", "intermediate"),
			q(6, "Explain A/B testing and its importance.", "Testing", "intermediate"),
			q(7, "What is the difference between supervised and unsupervised learning?", "Machine Learning", "intermediate"),
			q(8, "How do you handle outliers in your data?", "Data Cleaning", "intermediate"),
			q(9, "Explain the concept of data normalization.", "Data Processing", "intermediate"),
			q(10, "What are KPIs and how do you choose them?", "Business Intelligence", "intermediate"),
		},
		"UIDesigner": {
			q(1, "How do you approach user research for a new design project?", "User Research", "intermediate"),
			q(2, "What is the difference between UX and UI design?", "Design Fundamentals", "beginner"),
			q(3, "How do you ensure accessibility in your designs?", "Accessibility", "intermediate"),
			q(4, "Explain the design thinking process.", "Design Process", "intermediate"),
			q(5, "What are design systems and why are they important?", "Design Systems", "intermediate"),
			q(6, "How do you handle user feedback on your designs?", "User Feedback", "intermediate"),
			q(7, "What is responsive design and how do you implement it?", "Responsive Design", "intermediate"),
			q(8, "Explain the concept of information architecture.", "Information Architecture", "intermediate"),
			q(9, "How do you measure the success of a design?", "Design Metrics", "intermediate"),
			q(10, "What are the latest design trends you follow?", "Design Trends", "beginner"),
		},
		"DigitalMarketer": {
			q(1, "Explain how you would run a successful paid advertising campaign.", "Paid Advertising", "intermediate"),
			q(2, "What metrics do you track for email marketing campaigns?", "Email Marketing", "intermediate"),
			q(3, "How do you measure the ROI of social media marketing?", "Social Media", "intermediate"),
			q(4, "Explain the concept of marketing funnel.", "Marketing Strategy", "beginner"),
			q(5, "What is SEO and how do you optimize for it?", "SEO", "intermediate"),
			q(6, "How do you segment your audience for campaigns?", "Audience Targeting", "intermediate"),
			q(7, "What is content marketing and its benefits?", "Content Marketing", "beginner"),
			q(8, "How do you handle negative feedback on social media?", "Social Media Management", "intermediate"),
			q(9, "Explain the concept of marketing automation.", "Marketing Automation", "intermediate"),
			q(10, "What are the key components of a digital marketing strategy?", "Marketing Strategy", "intermediate"),
		},
	})
}
