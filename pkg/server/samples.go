// pkg/server/samples.go
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Sample extracts served for trying the platform end to end without real
// NSLDS or SIS exports.
const sampleNSLDS = `Borrower SSN,Borrower First Name,Borrower Last Name,E-mail,Days Delinquent,OPB,Loan Type
102341234,James,Smith,james.smith@email.com,45,15234,Subsidized
987652345,Mary,Johnson,mary.johnson@email.com,120,28750,Unsubsidized
456783456,John,Williams,john.williams@email.com,30,8500,PLUS
789124567,Patricia,Brown,patricia.brown@email.com,200,45200,Subsidized
321655678,Robert,Jones,robert.jones@email.com,60,18000,Unsubsidized
147256789,Jennifer,Garcia,jennifer.garcia@email.com,15,9500,Perkins
258367890,Michael,Miller,michael.miller@email.com,180,38000,Grad PLUS
369148901,Linda,Davis,linda.davis@email.com,75,22500,Subsidized
741859012,William,Rodriguez,william.rodriguez@email.com,240,52000,Unsubsidized
852960123,Elizabeth,Martinez,elizabeth.martinez@email.com,90,31200,PLUS
`

const sampleSIS = `Student ID,SSN,First Name,Last Name,Email,Major,Program,Academic Standing,GPA,Credit Hours,Enrollment Status
STU100000,102341234,James,Smith,james.smith@email.com,Business Administration,Bachelor of Business Administration,Good Standing,3.25,60,Full-time
STU100001,987652345,Mary,Johnson,mary.johnson@email.com,Computer Science,Bachelor of Science in Computer Science,Academic Warning,2.45,45,Full-time
STU100002,456783456,John,Williams,john.williams@email.com,Nursing,Bachelor of Science in Nursing,Good Standing,3.67,75,Full-time
STU100003,789124567,Patricia,Brown,patricia.brown@email.com,Engineering,Bachelor of Engineering,Good Standing,3.12,90,Full-time
STU100004,321655678,Robert,Jones,robert.jones@email.com,Psychology,Bachelor of Arts in Psychology,Dean's List,3.85,120,Full-time
STU100005,147256789,Jennifer,Garcia,jennifer.garcia@email.com,Education,Bachelor of Education,Good Standing,3.34,36,Part-time
STU100006,258367890,Michael,Miller,michael.miller@email.com,Liberal Arts,Bachelor of Arts,Academic Probation,1.89,24,Part-time
STU100007,369148901,Linda,Davis,linda.davis@email.com,Criminal Justice,Bachelor of Science in Criminal Justice,Good Standing,3.01,48,Full-time
STU100008,741859012,William,Rodriguez,william.rodriguez@email.com,Biology,Bachelor of Science in Biology,Academic Warning,2.23,72,Full-time
STU100009,852960123,Elizabeth,Martinez,elizabeth.martinez@email.com,Marketing,Bachelor of Business in Marketing,Good Standing,3.56,84,Full-time
`

// SampleData serves the bundled sample CSVs ("nslds" or "sis").
func (s *Server) SampleData(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	var body string
	switch kind {
	case "nslds":
		body = sampleNSLDS
	case "sis":
		body = sampleSIS
	default:
		s.writeError(w, http.StatusNotFound, "unknown sample: "+kind)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=sample_"+kind+".csv")
	w.Write([]byte(body))
}
