// Package taxonomy implements the deterministic skill extraction path:
// a fixed dictionary of skill phrases, each belonging to one category,
// matched whole-word and case-insensitively against raw text.
package taxonomy

import "fdescout/internal/model"

// Dictionary of skill phrases per category, tuned for Forward Deployed
// Engineer postings. A phrase registered under two categories belongs
// to the later one (see registrationOrder).
var aiMLKeywords = []string{
	// Core AI/ML
	"machine learning", "deep learning", "neural networks", "nlp", "natural language processing",
	"computer vision", "reinforcement learning", "supervised learning", "unsupervised learning",
	"transformers", "attention mechanism", "embeddings", "vector databases", "rag",
	"retrieval augmented generation", "fine-tuning", "prompt engineering", "llm", "large language models",
	"generative ai", "gen ai", "gpt", "claude", "chatgpt", "openai", "anthropic",
	"ai models", "foundation models", "frontier models", "ai systems", "ai applications",

	// Agents
	"ai agents", "agent development", "agentic", "autonomous agents", "multi-agent",
	"function calling", "tool use", "mcp", "mcp servers", "sub-agents", "agent skills",
	"chain of thought", "reasoning", "ai orchestration",

	// ML frameworks
	"tensorflow", "pytorch", "keras", "scikit-learn", "sklearn", "hugging face", "huggingface",
	"langchain", "llamaindex", "llama index", "openai api", "anthropic api", "claude api",
	"semantic kernel", "autogen", "crewai",

	// MLOps
	"mlops", "mlflow", "kubeflow", "sagemaker", "vertex ai", "azure ml", "databricks",
	"model deployment", "model serving", "feature store", "model monitoring",
	"ai deployment", "llm deployment", "production ai", "ai at scale",

	// Evaluation and safety
	"evaluation frameworks", "evals", "model evaluation", "ai safety", "responsible ai",
	"red teaming", "prompt injection", "jailbreaking", "guardrails",

	// Data science
	"pandas", "numpy", "scipy", "matplotlib", "seaborn", "jupyter", "data science",
	"statistical analysis", "a/b testing", "experimentation",
}

var programmingSkills = []string{
	// Languages
	"python", "javascript", "typescript", "java", "go", "golang", "rust", "c++", "c#",
	"scala", "kotlin", "ruby", "php", "swift", "r", "sql",

	// Web frameworks
	"react", "vue", "angular", "next.js", "nextjs", "node.js", "nodejs", "express",
	"fastapi", "flask", "django", "spring", "rails", "svelte",

	// APIs
	"rest", "restful", "graphql", "grpc", "websockets", "api design", "api development",
	"openapi", "swagger", "api integration", "sdk", "webhooks",

	// Architecture
	"data structures", "algorithms", "system design", "software architecture",
	"microservices", "distributed systems", "event-driven",

	// Practices
	"full-stack", "full stack", "backend", "frontend", "production code",
	"code review", "testing", "unit testing", "integration testing",
	"git", "version control", "agile development",
}

var cloudDevOps = []string{
	// Platforms
	"aws", "amazon web services", "gcp", "google cloud", "azure", "microsoft azure",
	"cloud infrastructure", "cloud native", "multi-cloud", "hybrid cloud",

	// Services
	"ec2", "s3", "lambda", "ecs", "eks", "rds", "dynamodb", "cloudformation",
	"bigquery", "cloud functions", "cloud run", "gke", "serverless",
	"api gateway", "sqs", "sns", "kinesis", "eventbridge",

	// Containers and CI
	"docker", "kubernetes", "k8s", "helm", "terraform", "ansible", "jenkins",
	"ci/cd", "github actions", "gitlab ci", "circleci", "argocd",
	"infrastructure as code", "iac", "devops",

	// Databases
	"postgresql", "postgres", "mysql", "mongodb", "redis", "elasticsearch",
	"pinecone", "weaviate", "chroma", "qdrant", "milvus", "sql", "nosql",
	"vector database", "graph database", "neo4j", "snowflake", "redshift",

	// Observability
	"monitoring", "logging", "observability", "datadog", "splunk", "grafana",
	"prometheus", "new relic", "cloudwatch",
}

var softSkills = []string{
	// Communication
	"communication", "presentation", "public speaking", "technical writing",
	"documentation", "storytelling", "executive presence",

	// Customer facing
	"customer-facing", "client-facing", "stakeholder management",
	"customer engagement", "customer success", "customer relationships",
	"discovery", "requirements gathering", "needs assessment",

	// Problem solving
	"problem solving", "problem-solving", "analytical", "critical thinking",
	"troubleshooting", "debugging", "root cause analysis",

	// Collaboration
	"collaboration", "teamwork", "cross-functional", "agile", "scrum",
	"leadership", "mentoring", "coaching", "influence",

	// Traits
	"high agency", "autonomy", "self-starter", "entrepreneurial",
	"ambiguity", "fast-paced", "adaptable", "resourceful",
}

var fdeSpecific = []string{
	// Role terms
	"forward deployed", "forward-deployed", "forward deploy", "forward deployment",
	"field engineer", "solutions engineer",
	"solutions architect", "technical account manager", "customer engineer",
	"professional services", "consulting", "technical consulting",

	// Activities
	"implementation", "integration", "deployment", "onboarding",
	"proof of concept", "poc", "pilot", "demo", "demonstration",
	"prototype", "prototyping", "mvp", "technical discovery",
	"white glove", "hands-on", "embedded", "on-site",

	// Sales and business
	"enterprise", "enterprise sales", "technical sales", "pre-sales", "post-sales",
	"enterprise customers", "strategic customers", "key accounts",
	"revenue", "expansion", "upsell", "land and expand",

	// Domain knowledge
	"use case", "use cases", "workflow", "workflows", "business process",
	"domain expertise", "industry knowledge", "vertical",
	"financial services", "healthcare", "life sciences", "fintech",

	// Delivery
	"production", "production environment", "production workflows",
	"customer requirements", "technical requirements", "solution design",
	"architecture review", "code review", "best practices",
	"deployment patterns", "reference architecture", "playbook",
}

var dataPipelines = []string{
	// Data engineering
	"data engineering", "data pipelines", "etl", "elt", "data warehouse",
	"data lake", "data mesh", "data modeling", "dbt",

	// Streaming
	"kafka", "apache kafka", "spark", "apache spark", "flink", "airflow",
	"streaming", "real-time", "batch processing",

	// Analytics
	"analytics", "business intelligence", "bi", "dashboards", "reporting",
	"looker", "tableau", "power bi", "metabase",
}

// registrationOrder fixes the order phrases are registered, which
// decides the winning category for a phrase listed twice (last wins,
// e.g. "sql" ends up in cloud_devops and "code review" in fde_specific).
var registrationOrder = []struct {
	category string
	phrases  []string
}{
	{model.CategoryAIML, aiMLKeywords},
	{model.CategoryProgram, programmingSkills},
	{model.CategoryCloud, cloudDevOps},
	{model.CategorySoft, softSkills},
	{model.CategoryFDE, fdeSpecific},
	{model.CategoryData, dataPipelines},
}
