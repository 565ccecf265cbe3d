package main

import "github.com/artemstakhov/portfolio/internal/web"

var profile = web.Profile{
	Name: "Artem Stakhov",
	Role: "Full-stack developer",
	About: "I build web applications end to end, from the database schema to the last animation on the page. " +
		"I enjoy turning rough ideas into products people actually use, and I care about fast, accessible " +
		"interfaces backed by simple, well-tested services.",
	Skills: []string{
		"TypeScript", "React", "Next.js", "Node.js", "Go", "PostgreSQL", "Docker", "Tailwind CSS", "n8n",
	},
	Experience: []web.Job{
		{
			Title:   "Full-stack developer",
			Company: "Freelance",
			Period:  "2022 - Present",
			Highlights: []string{
				"Delivered marketing sites and dashboards for small businesses, from design handoff to deployment",
				"Automated lead intake with n8n workflows connected to website contact forms",
				"Set up CI pipelines and containerized deployments for client projects",
			},
		},
		{
			Title:   "Frontend developer",
			Company: "Product studio",
			Period:  "2020 - 2022",
			Highlights: []string{
				"Built reusable React component libraries shared across several products",
				"Localized applications into English, Russian and Ukrainian",
			},
		},
	},
	Certificates: []web.Certificate{
		{
			Name:   "Responsive Web Design",
			Issuer: "freeCodeCamp",
			Link:   "https://www.freecodecamp.org/learn/2022/responsive-web-design/",
		},
		{
			Name:   "JavaScript Algorithms and Data Structures",
			Issuer: "freeCodeCamp",
			Link:   "https://www.freecodecamp.org/learn/javascript-algorithms-and-data-structures/",
		},
	},
}
