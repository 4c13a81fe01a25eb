package ai

import "fmt"

// FallbackCurriculum — детерминированная заглушка, когда генерация
// недоступна или вернула непригодный ответ.
func FallbackCurriculum(topic string) []ModuleOutline {
	return []ModuleOutline{
		{
			Title:       "Module 1: Environment Setup & Fundamentals",
			Description: fmt.Sprintf("Setting up your environment and understanding the core building blocks of %s.", topic),
			Lessons: []string{
				fmt.Sprintf("Introduction to %s", topic),
				"Setting up the Dev Environment",
				"Hello World: Your First Program",
				"Core Syntax and Data Types",
			},
		},
		{
			Title:       "Module 2: Deep Dive into Architecture",
			Description: fmt.Sprintf("Understanding how %s works under the hood.", topic),
			Lessons: []string{
				"Internal Architecture & Memory Management",
				"The Event Loop & Async Patterns",
				fmt.Sprintf("Design Patterns in %s", topic),
				"Data Structures Deep Dive",
			},
		},
		{
			Title:       "Module 3: Advanced Modern Patterns",
			Description: "Mastering widely used industry-standard patterns.",
			Lessons: []string{
				"State Management Strategies",
				"Performance Optimization Techniques",
				"Security Best Practices",
				"Clean Code Principles",
			},
		},
		{
			Title:       "Module 4: Testing & Quality Assurance",
			Description: "Ensuring your code is robust and production-ready.",
			Lessons: []string{
				"Unit Testing Strategies",
				"Integration Testing Strategies",
				"End-to-End Testing",
				"Debugging Techniques",
			},
		},
		{
			Title:       "Module 5: DevOps & Production Deployment",
			Description: "Taking your application from localhost to the cloud.",
			Lessons: []string{
				"Containerizing your Application",
				"CI/CD Pipelines",
				"Deploying to the Cloud",
				"Monitoring & Logging",
			},
		},
		{
			Title:       "Module 6: Capstone Project",
			Description: "Building a complete real-world application from scratch.",
			Lessons: []string{
				"Project Planning & Architecture",
				"Building the Backend API",
				"Frontend Integration",
				"Final Polish & Launch",
			},
		},
	}
}

// FallbackLesson — заглушка контента урока с тремя вопросами.
func FallbackLesson(title, moduleTitle string) LessonContent {
	if moduleTitle == "" {
		moduleTitle = "General"
	}

	content := fmt.Sprintf(`# %s

> Part of module: **%s**

## Overview

This lesson walks through **%s** from the ground up: what problem it
solves, how it works internally and how it is applied in production
systems.

## Key Concepts

- Start from first principles before reaching for abstractions.
- Understand the failure modes: race conditions, leaked resources and
  swallowed errors account for most production incidents.
- Measure before optimizing.

## Common Pitfalls

1. Improper teardown of event listeners leads to memory leaks.
2. Skipping input validation on trust boundaries.
3. Logging "failed" without the cause.

## Summary

You should now be able to explain %s, recognize where it applies and
avoid the most common mistakes when using it.
`, title, moduleTitle, title, title)

	return LessonContent{
		Content: content,
		Questions: []QuestionDraft{
			{
				Question: fmt.Sprintf("What should you do before optimizing an implementation of %s?", title),
				Options: []string{
					"Measure its current performance",
					"Rewrite it in another language",
					"Add more abstraction layers",
					"Disable logging",
				},
				CorrectAnswer: "Measure its current performance",
				Explanation:   "Optimization without measurement targets the wrong bottleneck more often than not.",
			},
			{
				Question: "Which of these is a common cause of memory leaks?",
				Options: []string{
					"Improper teardown of event listeners",
					"Using too many comments",
					"Short variable names",
					"Running tests frequently",
				},
				CorrectAnswer: "Improper teardown of event listeners",
				Explanation:   "Observers that are registered but never removed keep their targets reachable forever.",
			},
			{
				Question: "Where is input validation most important?",
				Options: []string{
					"On trust boundaries",
					"Only in test code",
					"Inside private helper functions",
					"Nowhere, types are enough",
				},
				CorrectAnswer: "On trust boundaries",
				Explanation:   "Data crossing a trust boundary is the data you cannot assume anything about.",
			},
		},
	}
}
