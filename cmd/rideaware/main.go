// Command rideaware prepares the labeled hazard-report corpus, trains and
// compares classifier families, and classifies reports.
package main

func main() {
	Execute()
}
