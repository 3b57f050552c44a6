// Command seed builds the sample university database used for demos and
// local testing.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
DROP TABLE IF EXISTS Grades;
DROP TABLE IF EXISTS Enrollments;
DROP TABLE IF EXISTS Courses;
DROP TABLE IF EXISTS Professors;
DROP TABLE IF EXISTS Students;
DROP TABLE IF EXISTS Departments;

CREATE TABLE Departments (
    department_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    building TEXT
);

CREATE TABLE Students (
    student_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    age INTEGER,
    department_id INTEGER,
    FOREIGN KEY (department_id) REFERENCES Departments(department_id)
);

CREATE TABLE Professors (
    professor_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    title TEXT,
    department_id INTEGER,
    FOREIGN KEY (department_id) REFERENCES Departments(department_id)
);

CREATE TABLE Courses (
    course_id INTEGER PRIMARY KEY AUTOINCREMENT,
    course_name TEXT NOT NULL,
    credits INTEGER,
    department_id INTEGER,
    professor_id INTEGER,
    FOREIGN KEY (department_id) REFERENCES Departments(department_id),
    FOREIGN KEY (professor_id) REFERENCES Professors(professor_id)
);

CREATE TABLE Enrollments (
    enrollment_id INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id INTEGER,
    course_id INTEGER,
    semester TEXT,
    FOREIGN KEY (student_id) REFERENCES Students(student_id),
    FOREIGN KEY (course_id) REFERENCES Courses(course_id)
);

CREATE TABLE Grades (
    grade_id INTEGER PRIMARY KEY AUTOINCREMENT,
    enrollment_id INTEGER,
    grade TEXT,
    FOREIGN KEY (enrollment_id) REFERENCES Enrollments(enrollment_id)
);
`

type department struct {
	name     string
	building string
}

var departments = []department{
	{"Computer Science", "Building A"},
	{"Software Engineering", "Building B"},
	{"Mathematics", "Building C"},
	{"Physics", "Building D"},
	{"English", "Building E"},
	{"Economics", "Building F"},
	{"Business Administration", "Building G"},
	{"Psychology", "Building H"},
	{"Political Science", "Building I"},
	{"Electrical Engineering", "Building J"},
}

var studentNames = []string{
	"Ali Khan", "Ahmed Raza", "Hassan Ali", "Zain Abbas", "Bilal Ahmed",
	"Usman Tariq", "Ahsan Saeed", "Imran Butt", "Tahir Mahmood", "Kashif Iqbal",
	"Saad Malik", "Rizwan Javed", "Shahzad Akram", "Waseem Afzal", "Yasir Nawaz",
}

var professorNames = []string{
	"Dr. Aslam", "Dr. Qureshi", "Dr. Farooq", "Dr. Salman", "Dr. Kamran",
	"Dr. Rafiq", "Dr. Nadeem", "Dr. Aftab", "Dr. Jamil", "Dr. Haroon",
}

var courseNames = []string{
	"Data Structures", "Algorithms", "Operating Systems", "Database Systems", "Artificial Intelligence",
	"Machine Learning", "Calculus I", "Linear Algebra", "Quantum Mechanics", "Business Communication",
	"Macroeconomics", "Microeconomics", "Psychology Basics", "Political Theory", "Electrical Circuits",
}

var titles = []string{"Professor", "Associate Professor", "Assistant Professor"}

var semesters = []string{"Fall 2025", "Spring 2025", "Summer 2025"}

var gradeLetters = []string{"A", "B", "C", "D", "F"}

func main() {
	path := flag.String("path", "university.db", "where to write the database")
	seed := flag.Int64("seed", 0, "random seed, 0 for nondeterministic")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	if *seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	if err := run(*path, rng); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	fmt.Printf("Database %q created with sample university data\n", *path)
}

func run(path string, rng *rand.Rand) error {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Exec(schemaSQL); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range departments {
		if _, err := tx.Exec("INSERT INTO Departments (name, building) VALUES (?, ?)", d.name, d.building); err != nil {
			return err
		}
	}

	for _, name := range professorNames {
		if _, err := tx.Exec(
			"INSERT INTO Professors (name, title, department_id) VALUES (?, ?, ?)",
			name, titles[rng.Intn(len(titles))], 1+rng.Intn(len(departments)),
		); err != nil {
			return err
		}
	}

	for _, name := range studentNames {
		if _, err := tx.Exec(
			"INSERT INTO Students (name, age, department_id) VALUES (?, ?, ?)",
			name, 18+rng.Intn(8), 1+rng.Intn(len(departments)),
		); err != nil {
			return err
		}
	}

	for _, name := range courseNames {
		if _, err := tx.Exec(
			"INSERT INTO Courses (course_name, credits, department_id, professor_id) VALUES (?, ?, ?, ?)",
			name, 2+rng.Intn(4), 1+rng.Intn(len(departments)), 1+rng.Intn(len(professorNames)),
		); err != nil {
			return err
		}
	}

	// Each student takes 3 distinct courses.
	var enrollmentID int64
	for studentID := 1; studentID <= len(studentNames); studentID++ {
		for _, courseID := range sampleCourses(rng, len(courseNames), 3) {
			res, err := tx.Exec(
				"INSERT INTO Enrollments (student_id, course_id, semester) VALUES (?, ?, ?)",
				studentID, courseID, semesters[rng.Intn(len(semesters))],
			)
			if err != nil {
				return err
			}
			if enrollmentID, err = res.LastInsertId(); err != nil {
				return err
			}
			if _, err := tx.Exec(
				"INSERT INTO Grades (enrollment_id, grade) VALUES (?, ?)",
				enrollmentID, gradeLetters[rng.Intn(len(gradeLetters))],
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// sampleCourses draws n distinct course IDs from 1..total.
func sampleCourses(rng *rand.Rand, total, n int) []int {
	perm := rng.Perm(total)
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		ids[i] = perm[i] + 1
	}
	return ids
}
