// Package analysis measures the complexity of a data structure's insert,
// select, update and delete operations and stress-tests them for reentrancy.
//
// # Complexity analysis
//
// Every requested operation kind runs in exactly two timed passes. Pass 2
// works against a larger structure than pass 1 and the ratio of the two
// per-element times is matched against the growth expected from O(1),
// O(log(n)) and O(n) behavior, with a fixed 10% tolerance:
//
//	Inserts and deletes of n elements (pass 2 moves 2n elements):
//	  O(1)       t2/t1                      ~= 1
//	  O(log(n))  t2/t1 / (log(3n)/log(n))   ~= 1
//	  O(n)       t2/t1 / 3                  ~= 1
//
//	Selects and updates of r elements on structures of n1 and n2 elements:
//	  O(1)       t2/t1                      ~= 1
//	  O(log(n))  t2/t1 / (log(n2)/log(n1))  ~= 1
//	  O(n)       t2/t1 / (n2/n1)            ~= 1
//
// O(n*log(n)) and O(n^2) are not told apart; anything beyond O(n) is reported
// as WorseThanOn. A pass 2 that is markedly faster than pass 1 is reported as
// BetterThanO1, which means the measurement itself is suspect.
//
// # Reentrancy tests
//
// Inserts, selects, updates and deletes run at the same time on their own
// goroutines, each scanning the element range in order:
//
//   - inserts run freely, at full speed;
//   - selects only touch elements already inserted;
//   - updates only touch elements already selected;
//   - deletes only touch elements already updated.
//
// The harness only enforces the ordering. The Subject's callbacks must check
// the data themselves (selects verify inserts, deletes verify updates) and
// return an error when they find something wrong.
package analysis
