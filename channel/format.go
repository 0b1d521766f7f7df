package channel

import (
	"strconv"
	"strings"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// minRun is the shortest run of equidistant indices that String contracts.
const minRun = 3

// String renders the list compactly. Runs of at least three equidistant indices
// become "start:end" (unit step) or "start:step:end" with an inclusive last index;
// everything else is listed as comma-separated literals.
func (l List) String() string {
	var sb strings.Builder
	idx := l.indices
	for i := 0; i < len(idx); {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		j := runEnd(idx, i)
		if j-i+1 >= minRun {
			step := idx[i+1] - idx[i]
			sb.WriteString(strconv.Itoa(idx[i]))
			sb.WriteByte(':')
			if step != 1 {
				sb.WriteString(strconv.Itoa(step))
				sb.WriteByte(':')
			}
			sb.WriteString(strconv.Itoa(idx[j]))
			i = j + 1
			continue
		}
		sb.WriteString(strconv.Itoa(idx[i]))
		i++
	}
	return sb.String()
}

// runEnd returns the last position of the equidistant run starting at i.
// Runs of repeated values are not contracted.
func runEnd(idx []int, i int) int {
	if i+1 >= len(idx) {
		return i
	}
	step := idx[i+1] - idx[i]
	if step == 0 {
		return i
	}
	j := i + 1
	for j+1 < len(idx) && idx[j+1]-idx[j] == step {
		j++
	}
	return j
}

// maxParsedIndices bounds the length of a parsed list.
const maxParsedIndices = 1 << 16

// ParseList parses the notation produced by List.String: comma-separated elements,
// each an index, "start:end" or "start:step:end" with an inclusive end.
// An empty or all-blank string yields an empty list.
func ParseList(s string) (List, error) {
	var out []int
	if strings.TrimSpace(s) == "" {
		return List{}, nil
	}
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return List{}, errors.Invalidf(errors.ErrInvalidRange, "List", "ParseList",
				"empty element in %q", s)
		}
		parts := strings.Split(token, ":")
		nums := make([]int, len(parts))
		for k, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return List{}, errors.WrapInvalid(err, "List", "ParseList", "element "+strconv.Quote(token))
			}
			nums[k] = v
		}
		var start, step, last int
		switch len(nums) {
		case 1:
			if nums[0] < 0 {
				return List{}, errors.Invalidf(errors.ErrChannelOutOfRange, "List", "ParseList",
					"negative index in %q", token)
			}
			if len(out) >= maxParsedIndices {
				return List{}, errors.Invalidf(errors.ErrInvalidRange, "List", "ParseList",
					"more than %d indices in %q", maxParsedIndices, s)
			}
			out = append(out, nums[0])
			continue
		case 2:
			start, step, last = nums[0], 1, nums[1]
		case 3:
			start, step, last = nums[0], nums[1], nums[2]
		default:
			return List{}, errors.Invalidf(errors.ErrInvalidRange, "List", "ParseList",
				"too many ':' separators in %q", token)
		}
		if step == 0 {
			return List{}, errors.Invalidf(errors.ErrInvalidRange, "List", "ParseList",
				"zero step in %q", token)
		}
		count := (last-start)/step + 1
		if count <= 0 || (last-start)*step < 0 {
			return List{}, errors.Invalidf(errors.ErrInvalidRange, "List", "ParseList",
				"step sign does not match direction in %q", token)
		}
		if (last-start)%step != 0 {
			return List{}, errors.Invalidf(errors.ErrInvalidRange, "List", "ParseList",
				"end of %q is not reached by its step", token)
		}
		if count > maxParsedIndices-len(out) {
			return List{}, errors.Invalidf(errors.ErrInvalidRange, "List", "ParseList",
				"more than %d indices in %q", maxParsedIndices, s)
		}
		r, err := NewRange(start, start+count*step, step)
		if err != nil {
			return List{}, errors.Wrap(err, "List", "ParseList", "element "+strconv.Quote(token))
		}
		out = append(out, r.Indices()...)
	}
	return List{indices: out}, nil
}
