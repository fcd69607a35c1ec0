package planner

const coordinatorSystemPrompt = "You are an expert product manager. Reply with a single JSON object and nothing else."

const coordinatorPrompt = `Analyze the project brief below and break it down into actionable tasks for a software team.

Return two lists:
1. "frontend_tasks": tasks for a frontend developer (for example UI components).
2. "backend_tasks": tasks for a backend developer (for example API endpoints or database schemas).

Each task is one short imperative sentence of at most 100 characters.

Project brief:
---
%s
---

Reply with ONLY a JSON object of the form:
{"frontend_tasks": ["..."], "backend_tasks": ["..."]}`

func workerSystemPrompt(area Area) string {
	switch area {
	case AreaFrontend:
		return "You are a senior frontend developer. Implement the task in the current working directory. " +
			"Keep each component in its own directory with its styles next to it."
	default:
		return "You are a senior backend developer. Implement the task in the current working directory. " +
			"Validate request bodies and keep handlers small."
	}
}
