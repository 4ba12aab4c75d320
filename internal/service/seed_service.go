package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/repository"
)

// SeedService populates the course catalog on first boot.
type SeedService interface {
	SeedCourses(ctx context.Context) error
}

type seedService struct {
	courses repository.CourseRepository
	logger  zerolog.Logger
}

// NewSeedService constructs the catalog seeder.
func NewSeedService(courses repository.CourseRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		courses: courses,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedCourses inserts the built-in catalog unless courses already exist.
func (s *seedService) SeedCourses(ctx context.Context) error {
	count, err := s.courses.Count(ctx)
	if err != nil {
		return fmt.Errorf("count courses: %w", err)
	}
	if count > 0 {
		s.logger.Debug().Int64("existing", count).Msg("course catalog already seeded")
		return nil
	}

	catalog := defaultCourseCatalog()
	if err := s.courses.BulkCreate(ctx, catalog); err != nil {
		return fmt.Errorf("seed courses: %w", err)
	}

	s.logger.Info().Int("courses", len(catalog)).Msg("course catalog seeded")
	return nil
}

func hoursOf(h int) *int { return &h }

func stars(r float64) *float64 { return &r }

func defaultCourseCatalog() []models.Course {
	dsa := string(assessment.TrackProgramming)
	ds := string(assessment.TrackDataScience)
	db := string(assessment.TrackDatabases)
	backend := string(assessment.TrackBackend)

	return []models.Course{
		{Title: "Data Structures and Algorithms Specialization", Platform: "Coursera", URL: "https://www.coursera.org/specializations/data-structures-algorithms", Track: dsa, SkillCovered: "Data Structures", DifficultyLevel: "Intermediate", DurationHours: hoursOf(80), Rating: stars(4.6), IsFree: false, Instructor: "UC San Diego", Description: "Comprehensive coverage of arrays, trees, graphs and algorithmic techniques."},
		{Title: "Striver's A2Z DSA Course", Platform: "takeUforward", URL: "https://takeuforward.org/strivers-a2z-dsa-course", Track: dsa, SkillCovered: "Dynamic Programming", DifficultyLevel: "Intermediate", DurationHours: hoursOf(120), Rating: stars(4.8), IsFree: true, Description: "Structured problem sheet from basics through dynamic programming and graphs."},
		{Title: "Recursion and Backtracking Masterclass", Platform: "YouTube", URL: "https://www.youtube.com/playlist?list=recursion-backtracking", Track: dsa, SkillCovered: "Recursion", DifficultyLevel: "Beginner", DurationHours: hoursOf(15), Rating: stars(4.5), IsFree: true, Description: "Builds recursive thinking from base cases to backtracking templates."},
		{Title: "Graph Theory for Competitive Programming", Platform: "Udemy", URL: "https://www.udemy.com/course/graph-theory-algorithms", Track: dsa, SkillCovered: "Graphs", DifficultyLevel: "Advanced", DurationHours: hoursOf(22), Rating: stars(4.7), IsFree: false, Description: "BFS, DFS, shortest paths, unions and flows with worked problems."},
		{Title: "Time Complexity Crash Course", Platform: "GeeksforGeeks", URL: "https://www.geeksforgeeks.org/complexity-analysis-course", Track: dsa, SkillCovered: "Complexity Analysis", DifficultyLevel: "Beginner", DurationHours: hoursOf(6), Rating: stars(4.3), IsFree: true, Description: "Big-O analysis with recurrence relations and amortized costs."},

		{Title: "Machine Learning", Platform: "Coursera", URL: "https://www.coursera.org/learn/machine-learning", Track: ds, SkillCovered: "Machine Learning", DifficultyLevel: "Intermediate", DurationHours: hoursOf(60), Rating: stars(4.9), IsFree: false, Instructor: "Andrew Ng", Description: "The classic introduction to supervised and unsupervised learning."},
		{Title: "Python for Data Science and ML Bootcamp", Platform: "Udemy", URL: "https://www.udemy.com/course/python-for-data-science-and-machine-learning-bootcamp", Track: ds, SkillCovered: "Pandas", DifficultyLevel: "Beginner", DurationHours: hoursOf(25), Rating: stars(4.6), IsFree: false, Description: "NumPy, pandas, matplotlib and scikit-learn from scratch."},
		{Title: "Statistics for Data Science", Platform: "Khan Academy", URL: "https://www.khanacademy.org/math/statistics-probability", Track: ds, SkillCovered: "Statistics", DifficultyLevel: "Beginner", DurationHours: hoursOf(30), Rating: stars(4.5), IsFree: true, Description: "Probability, distributions and hypothesis testing fundamentals."},
		{Title: "Deep Learning Specialization", Platform: "Coursera", URL: "https://www.coursera.org/specializations/deep-learning", Track: ds, SkillCovered: "Neural Networks", DifficultyLevel: "Advanced", DurationHours: hoursOf(100), Rating: stars(4.8), IsFree: false, Instructor: "deeplearning.ai", Description: "Neural networks, CNNs, sequence models and tuning strategies."},
		{Title: "Feature Engineering for ML", Platform: "Kaggle Learn", URL: "https://www.kaggle.com/learn/feature-engineering", Track: ds, SkillCovered: "Feature Engineering", DifficultyLevel: "Intermediate", DurationHours: hoursOf(8), Rating: stars(4.4), IsFree: true, Description: "Practical encodings, interactions and leakage pitfalls."},

		{Title: "The Complete SQL Bootcamp", Platform: "Udemy", URL: "https://www.udemy.com/course/the-complete-sql-bootcamp", Track: db, SkillCovered: "SQL Queries", DifficultyLevel: "Beginner", DurationHours: hoursOf(9), Rating: stars(4.7), IsFree: false, Description: "SELECTs, joins, aggregation and subqueries on PostgreSQL."},
		{Title: "Database Normalization Explained", Platform: "YouTube", URL: "https://www.youtube.com/watch?v=db-normalization", Track: db, SkillCovered: "Normalization", DifficultyLevel: "Beginner", DurationHours: hoursOf(3), Rating: stars(4.4), IsFree: true, Description: "1NF through BCNF with worked schema refactors."},
		{Title: "SQL Window Functions Deep Dive", Platform: "Mode Analytics", URL: "https://mode.com/sql-tutorial/sql-window-functions", Track: db, SkillCovered: "Window Functions", DifficultyLevel: "Intermediate", DurationHours: hoursOf(5), Rating: stars(4.6), IsFree: true, Description: "Ranking, running totals and frame clauses in analytic queries."},
		{Title: "Database Indexing and Performance", Platform: "Use The Index, Luke", URL: "https://use-the-index-luke.com", Track: db, SkillCovered: "Indexing", DifficultyLevel: "Advanced", DurationHours: hoursOf(12), Rating: stars(4.8), IsFree: true, Description: "How B-tree indexes work and how to write queries that use them."},
		{Title: "Transactions and Concurrency Control", Platform: "CMU Database Group", URL: "https://15445.courses.cs.cmu.edu", Track: db, SkillCovered: "Transactions", DifficultyLevel: "Advanced", DurationHours: hoursOf(40), Rating: stars(4.9), IsFree: true, Description: "ACID, isolation levels, locking and MVCC from first principles."},

		{Title: "REST API Design Best Practices", Platform: "Udemy", URL: "https://www.udemy.com/course/rest-api-design", Track: backend, SkillCovered: "REST APIs", DifficultyLevel: "Intermediate", DurationHours: hoursOf(10), Rating: stars(4.5), IsFree: false, Description: "Resource modeling, versioning, pagination and error contracts."},
		{Title: "Authentication and Authorization in Practice", Platform: "YouTube", URL: "https://www.youtube.com/playlist?list=auth-in-practice", Track: backend, SkillCovered: "Authentication", DifficultyLevel: "Intermediate", DurationHours: hoursOf(7), Rating: stars(4.4), IsFree: true, Description: "Sessions, JWTs, OAuth flows and common token mistakes."},
		{Title: "System Design Primer", Platform: "GitHub", URL: "https://github.com/donnemartin/system-design-primer", Track: backend, SkillCovered: "System Design", DifficultyLevel: "Advanced", DurationHours: hoursOf(50), Rating: stars(4.8), IsFree: true, Description: "Scalability patterns, caching, queues and tradeoff discussions."},
		{Title: "HTTP Caching and CDNs", Platform: "web.dev", URL: "https://web.dev/learn/performance/caching", Track: backend, SkillCovered: "Caching", DifficultyLevel: "Beginner", DurationHours: hoursOf(4), Rating: stars(4.3), IsFree: true, Description: "Cache headers, invalidation strategies and CDN behavior."},
		{Title: "Microservices with Message Queues", Platform: "Coursera", URL: "https://www.coursera.org/learn/microservices-messaging", Track: backend, SkillCovered: "Message Queues", DifficultyLevel: "Advanced", DurationHours: hoursOf(20), Rating: stars(4.6), IsFree: false, Description: "Async communication, delivery guarantees and consumer groups."},
	}
}
